// Package treasury implements the Dutch auction that recycles protocol
// collected fees back to the community. Whatever assets have accumulated on
// the auction's own account since the last settle are sold as one lot for
// the payment token, and the next epoch opens atomically.
package treasury

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/heesho/launchpad/foundation/launchpad/epoch"
	"github.com/heesho/launchpad/foundation/launchpad/ledger"
	"github.com/heesho/launchpad/foundation/launchpad/price"
)

// Construction errors. Each names the exact configuration value that is
// unacceptable.
var (
	ErrInvalidPaymentToken    = errors.New("payment token not set")
	ErrInvalidPaymentReceiver = errors.New("invalid payment receiver account")
	ErrInvalidAccount         = errors.New("invalid auction account")
)

// Call time errors specific to the treasury auction.
var (
	ErrEmptyAssets     = errors.New("empty asset list")
	ErrInvalidReceiver = errors.New("invalid receiver account")
)

// ErrInsufficientPayment is returned when the signing account cannot cover
// the current payment amount.
var ErrInsufficientPayment = errors.New("payer cannot cover payment amount")

// =============================================================================

// EventHandler defines a function that is called when events occur in the
// processing of settles.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct the auction.
// All values are immutable after construction.
type Config struct {
	AccountID         ledger.AccountID
	PaymentToken      ledger.Symbol
	PaymentReceiverID ledger.AccountID
	InitPrice         *big.Int
	Terms             epoch.Terms
	LaunchTime        time.Time
	Ledger            *ledger.Ledger
	EvHandler         EventHandler
	Clock             func() time.Time
}

// Settle carries everything a successful buy produced. It is what the
// journal records and what a restarted engine replays.
type Settle struct {
	EpochID    uint64           `json:"epoch_id"`
	BuyerID    ledger.AccountID `json:"buyer"`
	ReceiverID ledger.AccountID `json:"receiver"`
	Payment    *big.Int         `json:"payment"`
	InitPrice  *big.Int         `json:"init_price"`
	StartTime  time.Time        `json:"start_time"`
	Assets     []ledger.Symbol  `json:"assets"`
	Entries    []ledger.Entry   `json:"entries"`
}

// View is a read only snapshot of the auction state.
type View struct {
	Epoch     epoch.Epoch
	AccountID ledger.AccountID
}

// =============================================================================

// Auction manages the state of the treasury Dutch auction. The mutex is the
// explicit non-reentrant guard around every settle.
type Auction struct {
	accountID         ledger.AccountID
	paymentToken      ledger.Symbol
	paymentReceiverID ledger.AccountID
	terms             epoch.Terms
	ledger            *ledger.Ledger
	evHandler         EventHandler
	now               func() time.Time

	mu sync.Mutex
	ep epoch.Epoch
}

// New constructs the treasury auction, validating every configuration value
// against its documented bound. The first epoch opens immediately at the
// configured init price.
func New(cfg Config) (*Auction, error) {
	if !cfg.AccountID.IsAccountID() || cfg.AccountID.IsZero() {
		return nil, ErrInvalidAccount
	}
	if cfg.PaymentToken == "" {
		return nil, ErrInvalidPaymentToken
	}
	if !cfg.PaymentReceiverID.IsAccountID() || cfg.PaymentReceiverID.IsZero() {
		return nil, ErrInvalidPaymentReceiver
	}
	if err := cfg.Terms.Validate(); err != nil {
		return nil, err
	}
	if cfg.InitPrice == nil || cfg.InitPrice.Cmp(cfg.Terms.MinInitPrice) < 0 || cfg.InitPrice.Cmp(epoch.AbsMaxInitPrice) > 0 {
		return nil, epoch.ErrInitPriceOutOfRange
	}
	if cfg.Ledger == nil {
		return nil, errors.New("ledger not set")
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	launchTime := cfg.LaunchTime
	if launchTime.IsZero() {
		launchTime = now()
	}

	a := Auction{
		accountID:         cfg.AccountID,
		paymentToken:      cfg.PaymentToken,
		paymentReceiverID: cfg.PaymentReceiverID,
		terms:             cfg.Terms,
		ledger:            cfg.Ledger,
		evHandler:         ev,
		now:               now,

		ep: epoch.Epoch{
			ID:        0,
			InitPrice: new(big.Int).Set(cfg.InitPrice),
			StartTime: launchTime,
		},
	}

	return &a, nil
}

// AccountID returns the auction's own ledger account, where fee shares
// accumulate between settles.
func (a *Auction) AccountID() ledger.AccountID {
	return a.accountID
}

// Buy attempts to settle the current epoch for the signed transaction.
// Preconditions are checked in order and any failure aborts the whole call
// with no effect. On success the payment is pulled from the signer and the
// entire accumulated balance of every listed asset is swept to the receiver
// in one atomic batch, then the new epoch is committed. The mutex is held
// throughout, so no call observing the old epoch id can settle twice.
func (a *Auction) Buy(signedTx SignedBuyTx) (Settle, error) {
	if err := signedTx.Validate(); err != nil {
		return Settle{}, fmt.Errorf("%w: %s", ErrInvalidReceiver, err)
	}

	from, err := signedTx.FromAccount()
	if err != nil {
		return Settle{}, fmt.Errorf("%w: %s", ErrInvalidReceiver, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()

	// Checks.
	if len(signedTx.Assets) == 0 {
		return Settle{}, ErrEmptyAssets
	}
	if uint64(now.Unix()) > signedTx.Deadline {
		return Settle{}, epoch.ErrDeadlinePassed
	}
	if signedTx.EpochID != a.ep.ID {
		return Settle{}, epoch.ErrEpochMismatch
	}

	payment := price.Current(a.ep.InitPrice, a.ep.StartTime, a.terms.Period, now)
	if payment.Cmp(signedTx.MaxPayment) > 0 {
		return Settle{}, epoch.ErrPriceLimitExceeded
	}
	if payment.Sign() > 0 && a.ledger.BalanceOf(a.paymentToken, from).Cmp(payment) < 0 {
		return Settle{}, ErrInsufficientPayment
	}

	// Effects. The sweep is a full balance read per asset, not a fixed
	// amount: the lot is whatever fees have accumulated since the last
	// settle. Zero balances and repeated symbols are skipped.
	entries := make([]ledger.Entry, 0, len(signedTx.Assets)+1)
	if payment.Sign() > 0 {
		entries = append(entries, ledger.NewMove(a.paymentToken, from, a.paymentReceiverID, payment))
	}

	seen := make(map[ledger.Symbol]bool)
	for _, asset := range signedTx.Assets {
		if seen[asset] {
			continue
		}
		seen[asset] = true

		balance := a.ledger.BalanceOf(asset, a.accountID)
		if balance.Sign() == 0 {
			continue
		}

		entries = append(entries, ledger.NewMove(asset, a.accountID, signedTx.ReceiverID, balance))
	}

	settle := Settle{
		EpochID:    a.ep.ID + 1,
		BuyerID:    from,
		ReceiverID: signedTx.ReceiverID,
		Payment:    payment,
		InitPrice:  a.terms.NextInitPrice(payment),
		StartTime:  now,
		Assets:     signedTx.Assets,
		Entries:    entries,
	}

	// The batch lands completely or not at all, and the epoch advances only
	// once it has. A batch the buyer cannot cover, such as paying from the
	// auction's own account while sweeping the payment token, aborts here
	// with the live epoch untouched.
	if err := a.ledger.Apply(entries); err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			return Settle{}, fmt.Errorf("%w: %s", ErrInsufficientPayment, err)
		}
		return Settle{}, fmt.Errorf("applying settle batch: %w", err)
	}

	a.commit(settle)

	a.evHandler("treasury: settle: epoch[%d] buyer[%s] receiver[%s] payment[%s]", settle.EpochID, settle.BuyerID, settle.ReceiverID, settle.Payment)

	return settle, nil
}

// Price returns the current payment amount for the live epoch. Pure read,
// no state change.
func (a *Auction) Price() *big.Int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return price.Current(a.ep.InitPrice, a.ep.StartTime, a.terms.Period, a.now())
}

// View returns a snapshot of the auction state.
func (a *Auction) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()

	return View{
		Epoch: epoch.Epoch{
			ID:        a.ep.ID,
			InitPrice: new(big.Int).Set(a.ep.InitPrice),
			StartTime: a.ep.StartTime,
		},
		AccountID: a.accountID,
	}
}

// Replay installs the state a previously journaled settle committed. It is
// used when the engine reconstructs itself from the journal; the ledger
// effects are applied by the caller.
func (a *Auction) Replay(settle Settle) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if settle.EpochID != a.ep.ID+1 {
		return epoch.ErrEpochMismatch
	}

	a.commit(settle)
	return nil
}

// =============================================================================

// commit replaces the live epoch with the settled one. All fields advance
// together. The caller must hold the lock.
func (a *Auction) commit(settle Settle) {
	a.ep = epoch.Epoch{
		ID:        settle.EpochID,
		InitPrice: settle.InitPrice,
		StartTime: settle.StartTime,
	}
}
