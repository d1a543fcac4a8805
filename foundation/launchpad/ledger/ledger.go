// Package ledger maintains the in memory balance book for every token the
// launchpad issues or accepts. Balances move only through atomic batches so
// a settle either lands completely or not at all.
package ledger

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
)

// ErrInsufficientFunds is returned when a batch debits an account for more
// than it holds.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidAccount is returned when an entry names a malformed or zero
// value account.
var ErrInvalidAccount = errors.New("invalid account")

// ErrNegativeAmount is returned when an entry carries a negative amount.
var ErrNegativeAmount = errors.New("negative amount")

// =============================================================================

// Symbol identifies a token tracked by the ledger.
type Symbol string

// Entry represents a single balance movement inside a batch. An entry with
// no from account is an issuance of new supply.
type Entry struct {
	Symbol Symbol
	FromID AccountID
	ToID   AccountID
	Amount *big.Int
}

// NewMove constructs a transfer entry between two accounts.
func NewMove(symbol Symbol, fromID AccountID, toID AccountID, amount *big.Int) Entry {
	return Entry{
		Symbol: symbol,
		FromID: fromID,
		ToID:   toID,
		Amount: amount,
	}
}

// NewIssue constructs an issuance entry that mints new supply to an account.
func NewIssue(symbol Symbol, toID AccountID, amount *big.Int) Entry {
	return Entry{
		Symbol: symbol,
		ToID:   toID,
		Amount: amount,
	}
}

// =============================================================================

// Ledger manages the balances of every account for every token.
type Ledger struct {
	mu       sync.RWMutex
	balances map[Symbol]map[AccountID]*big.Int
}

// New constructs an empty ledger.
func New() *Ledger {
	return &Ledger{
		balances: make(map[Symbol]map[AccountID]*big.Int),
	}
}

// Mint issues the specified amount of new supply to the account.
func (l *Ledger) Mint(symbol Symbol, toID AccountID, amount *big.Int) error {
	return l.Apply([]Entry{NewIssue(symbol, toID, amount)})
}

// Transfer moves the specified amount between two accounts.
func (l *Ledger) Transfer(symbol Symbol, fromID AccountID, toID AccountID, amount *big.Int) error {
	return l.Apply([]Entry{NewMove(symbol, fromID, toID, amount)})
}

// Apply executes a batch of entries atomically. Every debit is validated
// against the post-batch balance before any balance is mutated, so a failed
// batch leaves the ledger untouched. Zero amount entries are skipped.
func (l *Ledger) Apply(entries []Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Walk the batch once to validate the entries and accumulate the net
	// debit each account would take.
	type debitKey struct {
		symbol Symbol
		from   AccountID
	}
	debits := make(map[debitKey]*big.Int)

	for _, entry := range entries {
		if entry.Amount == nil || entry.Amount.Sign() < 0 {
			return ErrNegativeAmount
		}
		if entry.Amount.Sign() == 0 {
			continue
		}
		if !entry.ToID.IsAccountID() || entry.ToID.IsZero() {
			return fmt.Errorf("to account %q: %w", entry.ToID, ErrInvalidAccount)
		}

		if entry.FromID == "" {
			continue
		}
		if !entry.FromID.IsAccountID() || entry.FromID.IsZero() {
			return fmt.Errorf("from account %q: %w", entry.FromID, ErrInvalidAccount)
		}

		key := debitKey{symbol: entry.Symbol, from: entry.FromID}
		if _, exists := debits[key]; !exists {
			debits[key] = big.NewInt(0)
		}
		debits[key].Add(debits[key], entry.Amount)
	}

	for key, debit := range debits {
		if debit.Cmp(l.balanceOf(key.symbol, key.from)) > 0 {
			return fmt.Errorf("account %s token %s: %w", key.from, key.symbol, ErrInsufficientFunds)
		}
	}

	// The batch is fully funded so the balance changes can be applied.
	for _, entry := range entries {
		if entry.Amount.Sign() == 0 {
			continue
		}

		if entry.FromID != "" {
			from := l.account(entry.Symbol, entry.FromID)
			from.Sub(from, entry.Amount)
		}

		to := l.account(entry.Symbol, entry.ToID)
		to.Add(to, entry.Amount)
	}

	return nil
}

// BalanceOf returns the balance the account holds for the token.
func (l *Ledger) BalanceOf(symbol Symbol, accountID AccountID) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return new(big.Int).Set(l.balanceOf(symbol, accountID))
}

// Balances returns a copy of every nonzero balance for the token.
func (l *Ledger) Balances(symbol Symbol) map[AccountID]*big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cpy := make(map[AccountID]*big.Int)
	for accountID, balance := range l.balances[symbol] {
		if balance.Sign() == 0 {
			continue
		}
		cpy[accountID] = new(big.Int).Set(balance)
	}

	return cpy
}

// Symbols returns every token the ledger has seen a balance for.
func (l *Ledger) Symbols() []Symbol {
	l.mu.RLock()
	defer l.mu.RUnlock()

	symbols := make([]Symbol, 0, len(l.balances))
	for symbol := range l.balances {
		symbols = append(symbols, symbol)
	}

	return symbols
}

// =============================================================================

// balanceOf returns the stored balance without copying. The caller must
// hold the lock.
func (l *Ledger) balanceOf(symbol Symbol, accountID AccountID) *big.Int {
	accounts, exists := l.balances[symbol]
	if !exists {
		return big.NewInt(0)
	}

	balance, exists := accounts[accountID]
	if !exists {
		return big.NewInt(0)
	}

	return balance
}

// account returns the mutable balance for the account, creating it when it
// does not exist yet. The caller must hold the lock.
func (l *Ledger) account(symbol Symbol, accountID AccountID) *big.Int {
	accounts, exists := l.balances[symbol]
	if !exists {
		accounts = make(map[AccountID]*big.Int)
		l.balances[symbol] = accounts
	}

	balance, exists := accounts[accountID]
	if !exists {
		balance = big.NewInt(0)
		accounts[accountID] = balance
	}

	return balance
}
