// Package mining implements the Dutch auction that sells the exclusive
// right to the launchpad token emission stream. Every settle pays the
// current price, mints the displaced holder their accrued emission, splits
// the payment between the previous holder, the team, the protocol and the
// treasury, and atomically opens the next epoch.
package mining

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/heesho/launchpad/foundation/launchpad/emission"
	"github.com/heesho/launchpad/foundation/launchpad/epoch"
	"github.com/heesho/launchpad/foundation/launchpad/ledger"
	"github.com/heesho/launchpad/foundation/launchpad/price"
)

// The payment for a settle is split on fixed basis point weights. The
// treasury share is never its own weight: it is whatever remains after the
// explicit shares, so the four parts always sum exactly to the price.
const (
	holderShareBPS   = 8000
	teamShareBPS     = 400
	protocolShareBPS = 100
	bpsDenominator   = 10000
)

// Construction errors. Each names the exact configuration value that is
// unacceptable.
var (
	ErrInvalidMintToken     = errors.New("mint token not set")
	ErrInvalidPaymentToken  = errors.New("payment token not set")
	ErrInvalidTreasury      = errors.New("invalid treasury account")
	ErrInvalidTeam          = errors.New("invalid team account")
	ErrInvalidProtocol      = errors.New("invalid protocol account")
	ErrInvalidHolder        = errors.New("invalid initial holder account")
	ErrInvalidInitialRate   = errors.New("invalid initial rate")
	ErrInvalidTailRate      = errors.New("invalid tail rate")
	ErrTailAboveInitialRate = errors.New("tail rate above initial rate")
	ErrInvalidHalvingPeriod = errors.New("invalid halving period")
)

// ErrInvalidMiner is returned when a mine tx names a malformed or zero
// value miner account.
var ErrInvalidMiner = errors.New("invalid miner account")

// ErrInsufficientPayment is returned when the signing account cannot cover
// the current price. Checking funds before the epoch commit keeps the
// post-commit transfer step infallible.
var ErrInsufficientPayment = errors.New("payer cannot cover current price")

// =============================================================================

// EventHandler defines a function that is called when events occur in the
// processing of settles.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct the auction.
// All values are immutable after construction.
type Config struct {
	MintToken     ledger.Symbol
	PaymentToken  ledger.Symbol
	TreasuryID    ledger.AccountID
	TeamID        ledger.AccountID
	ProtocolID    ledger.AccountID
	HolderID      ledger.AccountID
	URI           string
	InitialRate   *big.Int
	TailRate      *big.Int
	HalvingPeriod time.Duration
	Terms         epoch.Terms
	LaunchTime    time.Time
	Ledger        *ledger.Ledger
	EvHandler     EventHandler
	Clock         func() time.Time
}

// Settle carries everything a successful mine produced: the new epoch, the
// payment split and the emission minted to the displaced holder. It is what
// the journal records and what a restarted engine replays.
type Settle struct {
	EpochID    uint64           `json:"epoch_id"`
	MinerID    ledger.AccountID `json:"miner"`
	PayerID    ledger.AccountID `json:"payer"`
	Price      *big.Int         `json:"price"`
	MintAmount *big.Int         `json:"mint_amount"`
	InitPrice  *big.Int         `json:"init_price"`
	StartTime  time.Time        `json:"start_time"`
	Rate       *big.Int         `json:"rate"`
	URI        string           `json:"uri"`
	Entries    []ledger.Entry   `json:"entries"`
}

// View is a read only snapshot of the auction state.
type View struct {
	Epoch    epoch.Epoch
	Rate     *big.Int
	HolderID ledger.AccountID
	URI      string
}

// =============================================================================

// Auction manages the state of the mining Dutch auction. The mutex is the
// explicit non-reentrant guard around every settle: exactly one mine can
// observe and replace any given epoch.
type Auction struct {
	mintToken     ledger.Symbol
	paymentToken  ledger.Symbol
	treasuryID    ledger.AccountID
	teamID        ledger.AccountID
	protocolID    ledger.AccountID
	initialRate   *big.Int
	tailRate      *big.Int
	halvingPeriod time.Duration
	terms         epoch.Terms
	launchTime    time.Time
	ledger        *ledger.Ledger
	evHandler     EventHandler
	now           func() time.Time

	mu       sync.Mutex
	ep       epoch.Epoch
	rate     *big.Int
	holderID ledger.AccountID
	uri      string
}

// New constructs the mining auction, validating every configuration value
// against its documented bound. The first epoch opens immediately at the
// configured minimum init price with the initial holder owning the stream.
func New(cfg Config) (*Auction, error) {
	if cfg.MintToken == "" {
		return nil, ErrInvalidMintToken
	}
	if cfg.PaymentToken == "" {
		return nil, ErrInvalidPaymentToken
	}
	if !cfg.TreasuryID.IsAccountID() || cfg.TreasuryID.IsZero() {
		return nil, ErrInvalidTreasury
	}
	if !cfg.TeamID.IsAccountID() {
		return nil, ErrInvalidTeam
	}
	if !cfg.ProtocolID.IsAccountID() {
		return nil, ErrInvalidProtocol
	}
	if !cfg.HolderID.IsAccountID() || cfg.HolderID.IsZero() {
		return nil, ErrInvalidHolder
	}
	if cfg.InitialRate == nil || cfg.InitialRate.Sign() <= 0 {
		return nil, ErrInvalidInitialRate
	}
	if cfg.TailRate == nil || cfg.TailRate.Sign() < 0 {
		return nil, ErrInvalidTailRate
	}
	if cfg.TailRate.Cmp(cfg.InitialRate) > 0 {
		return nil, ErrTailAboveInitialRate
	}
	if cfg.HalvingPeriod <= 0 {
		return nil, ErrInvalidHalvingPeriod
	}
	if err := cfg.Terms.Validate(); err != nil {
		return nil, err
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

	// The launch time anchors the halving schedule. It survives restarts
	// through the launch file, so a reconstructed engine keeps the same
	// emission clock.
	launchTime := cfg.LaunchTime
	if launchTime.IsZero() {
		launchTime = now()
	}

	a := Auction{
		mintToken:     cfg.MintToken,
		paymentToken:  cfg.PaymentToken,
		treasuryID:    cfg.TreasuryID,
		teamID:        cfg.TeamID,
		protocolID:    cfg.ProtocolID,
		initialRate:   new(big.Int).Set(cfg.InitialRate),
		tailRate:      new(big.Int).Set(cfg.TailRate),
		halvingPeriod: cfg.HalvingPeriod,
		terms:         cfg.Terms,
		launchTime:    launchTime,
		ledger:        cfg.Ledger,
		evHandler:     ev,
		now:           now,

		ep: epoch.Epoch{
			ID:        0,
			InitPrice: new(big.Int).Set(cfg.Terms.MinInitPrice),
			StartTime: launchTime,
		},
		rate:     new(big.Int).Set(cfg.InitialRate),
		holderID: cfg.HolderID,
		uri:      cfg.URI,
	}

	return &a, nil
}

// Mine attempts to settle the current epoch for the signed transaction.
// Preconditions are checked in order and any failure aborts the whole call
// with no effect. On success the mint and the fee split land in one atomic
// batch, then the new epoch is committed and the paid price is returned
// with the full settle detail. The mutex is held throughout, so no call
// observing the old epoch id can settle twice.
func (a *Auction) Mine(signedTx SignedMineTx) (Settle, error) {
	if err := signedTx.Validate(); err != nil {
		return Settle{}, fmt.Errorf("%w: %s", ErrInvalidMiner, err)
	}

	from, err := signedTx.FromAccount()
	if err != nil {
		return Settle{}, fmt.Errorf("%w: %s", ErrInvalidMiner, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()

	// Checks. Each names a distinct failure so a caller can tell a lost
	// race from a stale intent from a limit set too tight.
	if uint64(now.Unix()) > signedTx.Deadline {
		return Settle{}, epoch.ErrDeadlinePassed
	}
	if signedTx.EpochID != a.ep.ID {
		return Settle{}, epoch.ErrEpochMismatch
	}

	curPrice := price.Current(a.ep.InitPrice, a.ep.StartTime, a.terms.Period, now)
	if curPrice.Cmp(signedTx.MaxPrice) > 0 {
		return Settle{}, epoch.ErrPriceLimitExceeded
	}
	if curPrice.Sign() > 0 && a.ledger.BalanceOf(a.paymentToken, from).Cmp(curPrice) < 0 {
		return Settle{}, ErrInsufficientPayment
	}

	// Effects. Everything is computed from the state captured at entry.
	// The displaced holder is paid for the time held at the rate fixed when
	// they won the epoch, not the rate in effect now.
	held := now.Sub(a.ep.StartTime)
	if held < 0 {
		held = 0
	}
	mintAmount := new(big.Int).Mul(a.rate, big.NewInt(int64(held/time.Second)))

	entries := make([]ledger.Entry, 0, 5)
	entries = append(entries, ledger.NewIssue(a.mintToken, a.holderID, mintAmount))
	if curPrice.Sign() > 0 {
		entries = append(entries, a.splitPayment(curPrice, from, a.holderID)...)
	}

	settle := Settle{
		EpochID:    a.ep.ID + 1,
		MinerID:    signedTx.MinerID,
		PayerID:    from,
		Price:      curPrice,
		MintAmount: mintAmount,
		InitPrice:  a.terms.NextInitPrice(curPrice),
		StartTime:  now,
		Rate:       emission.Rate(a.initialRate, a.tailRate, a.halvingPeriod, a.launchTime, now),
		URI:        signedTx.URI,
		Entries:    entries,
	}

	// The batch lands completely or not at all, and the epoch advances only
	// once it has. The funds check above names the common failure early;
	// Apply is the backstop when the payer's balance moved under us between
	// the check and here.
	if err := a.ledger.Apply(entries); err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			return Settle{}, fmt.Errorf("%w: %s", ErrInsufficientPayment, err)
		}
		return Settle{}, fmt.Errorf("applying settle batch: %w", err)
	}

	prevHolderID := a.holderID
	a.commit(settle)

	a.evHandler("mining: settle: epoch[%d] miner[%s] price[%s] uri[%s]", settle.EpochID, settle.MinerID, settle.Price, settle.URI)
	a.evHandler("mining: settle: minted[%s] to previous holder[%s]", settle.MintAmount, prevHolderID)
	for _, entry := range entries {
		if entry.FromID == "" || entry.Amount.Sign() == 0 {
			continue
		}
		a.evHandler("mining: settle: fee[%s] paid to[%s]", entry.Amount, entry.ToID)
	}

	return settle, nil
}

// Price returns the current price of the live epoch. Pure read, no state
// change.
func (a *Auction) Price() *big.Int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return price.Current(a.ep.InitPrice, a.ep.StartTime, a.terms.Period, a.now())
}

// Rate returns the emission rate the schedule is worth right now. Pure
// read, no state change.
func (a *Auction) Rate() *big.Int {
	return emission.Rate(a.initialRate, a.tailRate, a.halvingPeriod, a.launchTime, a.now())
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
		Rate:     new(big.Int).Set(a.rate),
		HolderID: a.holderID,
		URI:      a.uri,
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
// together; no epoch is ever partially updated. The caller must hold the
// lock.
func (a *Auction) commit(settle Settle) {
	a.ep = epoch.Epoch{
		ID:        settle.EpochID,
		InitPrice: settle.InitPrice,
		StartTime: settle.StartTime,
	}
	a.rate = settle.Rate
	a.holderID = settle.MinerID
	a.uri = settle.URI
}

// splitPayment splits the settle price on the basis point weights. Shares
// whose receiver is the zero address are skipped and fall through to the
// treasury remainder, which is always computed as total minus the explicit
// shares so rounding dust is conserved.
func (a *Auction) splitPayment(total *big.Int, payerID ledger.AccountID, prevHolderID ledger.AccountID) []ledger.Entry {
	cuts := []struct {
		toID ledger.AccountID
		bps  int64
	}{
		{prevHolderID, holderShareBPS},
		{a.teamID, teamShareBPS},
		{a.protocolID, protocolShareBPS},
	}

	remaining := new(big.Int).Set(total)
	entries := make([]ledger.Entry, 0, len(cuts)+1)

	for _, cut := range cuts {
		if cut.toID.IsZero() {
			continue
		}

		amount := new(big.Int).Mul(total, big.NewInt(cut.bps))
		amount.Quo(amount, big.NewInt(bpsDenominator))
		remaining.Sub(remaining, amount)

		entries = append(entries, ledger.NewMove(a.paymentToken, payerID, cut.toID, amount))
	}

	entries = append(entries, ledger.NewMove(a.paymentToken, payerID, a.treasuryID, remaining))

	return entries
}
