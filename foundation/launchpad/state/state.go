// Package state is the core API for the launchpad and owns the ledger,
// both Dutch auctions and the settle journal.
package state

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/heesho/launchpad/foundation/launchpad/epoch"
	"github.com/heesho/launchpad/foundation/launchpad/genesis"
	"github.com/heesho/launchpad/foundation/launchpad/journal"
	"github.com/heesho/launchpad/foundation/launchpad/ledger"
	"github.com/heesho/launchpad/foundation/launchpad/mining"
	"github.com/heesho/launchpad/foundation/launchpad/treasury"
)

// ErrJournalBehind is returned when a settle has landed but its journal
// record could not be written. The live state is ahead of the journal and a
// restart would not reconstruct it, so the engine must stop settling.
var ErrJournalBehind = errors.New("settle stands but journal write failed")

// EventHandler defines a function that is called when events occur in the
// processing of settles.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the launchpad
// engine.
type Config struct {
	Genesis   genesis.Genesis
	Storage   journal.Serializer
	EvHandler EventHandler
	Clock     func() time.Time
}

// State manages the launchpad: the token ledger, the mining auction, the
// treasury auction and the journal that makes every settle replayable.
type State struct {
	genesis   genesis.Genesis
	ledger    *ledger.Ledger
	mining    *mining.Auction
	treasury  *treasury.Auction
	storage   journal.Serializer
	evHandler EventHandler

	mu  sync.Mutex
	seq uint64
}

// New constructs the launchpad from the launch file, then replays the
// journal so a restarted engine picks up exactly where it stopped.
func New(cfg Config) (*State, error) {

	if cfg.Storage == nil {
		return nil, errors.New("journal storage not set")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	lgr := ledger.New()

	// Seed the starting payment token balances from the launch file.
	paymentToken := ledger.Symbol(cfg.Genesis.PaymentToken)
	for accountStr, amountStr := range cfg.Genesis.Balances {
		accountID, err := ledger.ToAccountID(accountStr)
		if err != nil {
			return nil, fmt.Errorf("genesis balance account: %w", err)
		}

		amount, err := genesis.ToBigInt(amountStr)
		if err != nil {
			return nil, fmt.Errorf("genesis balance amount: %w", err)
		}

		if err := lgr.Mint(paymentToken, accountID, amount); err != nil {
			return nil, fmt.Errorf("seeding genesis balance: %w", err)
		}
	}

	trs, err := newTreasury(cfg.Genesis, lgr, ev, cfg.Clock)
	if err != nil {
		return nil, fmt.Errorf("constructing treasury auction: %w", err)
	}

	// The mining auction's residual fee share is routed to the treasury
	// auction's own account. That transfer is the only interaction between
	// the two.
	mng, err := newMining(cfg.Genesis, trs.AccountID(), lgr, ev, cfg.Clock)
	if err != nil {
		return nil, fmt.Errorf("constructing mining auction: %w", err)
	}

	s := State{
		genesis:   cfg.Genesis,
		ledger:    lgr,
		mining:    mng,
		treasury:  trs,
		storage:   cfg.Storage,
		evHandler: ev,
	}

	// Replay the journal over the genesis state. Records carry both the
	// committed epoch and the full ledger effects, so the replay is exact.
	iter := s.storage.ForEach()
	for record, err := iter.Next(); !iter.Done(); record, err = iter.Next() {
		if err != nil {
			return nil, fmt.Errorf("reading journal: %w", err)
		}

		if err := s.replay(record); err != nil {
			return nil, fmt.Errorf("replaying journal record %d: %w", record.Seq, err)
		}

		s.seq = record.Seq
	}

	ev("state: New: journal replayed: records[%d]", s.seq)

	return &s, nil
}

// Shutdown cleanly brings the engine down.
func (s *State) Shutdown() error {
	s.storage.Close()
	return nil
}

// =============================================================================

// Mine attempts to settle the current mining epoch with the signed
// transaction and journals the result. Settles on both auctions serialize
// here so the journal order matches the order balances moved.
func (s *State) Mine(signedTx mining.SignedMineTx) (mining.Settle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settle, err := s.mining.Mine(signedTx)
	if err != nil {
		return mining.Settle{}, err
	}

	if err := s.journal(journal.NewMineRecord(s.seq+1, settle)); err != nil {
		return mining.Settle{}, err
	}

	s.evHandler("viewer: mining: epoch[%d] miner[%s] price[%s]", settle.EpochID, settle.MinerID, settle.Price)

	return settle, nil
}

// Buy attempts to settle the current treasury epoch with the signed
// transaction and journals the result. Settles on both auctions serialize
// here so the journal order matches the order balances moved.
func (s *State) Buy(signedTx treasury.SignedBuyTx) (treasury.Settle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settle, err := s.treasury.Buy(signedTx)
	if err != nil {
		return treasury.Settle{}, err
	}

	if err := s.journal(journal.NewBuyRecord(s.seq+1, settle)); err != nil {
		return treasury.Settle{}, err
	}

	s.evHandler("viewer: treasury: epoch[%d] buyer[%s] payment[%s]", settle.EpochID, settle.BuyerID, settle.Payment)

	return settle, nil
}

// =============================================================================

// RetrieveGenesis returns a copy of the launch file information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveMining returns a snapshot of the mining auction state.
func (s *State) RetrieveMining() mining.View {
	return s.mining.View()
}

// MiningPrice returns the current price of the live mining epoch.
func (s *State) MiningPrice() *big.Int {
	return s.mining.Price()
}

// MiningRate returns the emission rate the schedule is worth right now.
func (s *State) MiningRate() *big.Int {
	return s.mining.Rate()
}

// RetrieveTreasury returns a snapshot of the treasury auction state.
func (s *State) RetrieveTreasury() treasury.View {
	return s.treasury.View()
}

// TreasuryPrice returns the current payment amount of the live treasury
// epoch.
func (s *State) TreasuryPrice() *big.Int {
	return s.treasury.Price()
}

// Balances returns a copy of every nonzero balance for the token.
func (s *State) Balances(symbol ledger.Symbol) map[ledger.AccountID]*big.Int {
	return s.ledger.Balances(symbol)
}

// BalanceOf returns the balance the account holds for the token.
func (s *State) BalanceOf(symbol ledger.Symbol, accountID ledger.AccountID) *big.Int {
	return s.ledger.BalanceOf(symbol, accountID)
}

// =============================================================================

// journal writes the record for a settle that has already landed. A failed
// write means the live state is ahead of the journal, which a restart
// cannot reconstruct, so the failure carries ErrJournalBehind and the
// caller is expected to stop the engine. The caller must hold the lock.
func (s *State) journal(record journal.Record) error {
	if err := s.storage.Write(record); err != nil {
		return fmt.Errorf("%w: %s", ErrJournalBehind, err)
	}
	s.seq = record.Seq

	return nil
}

/// replay applies one journal record: first the ledger effects, then the
// epoch the settle committed.
func (s *State) replay(record journal.Record) error {
	switch record.Kind {
	case journal.KindMine:
		if record.Mine == nil {
			return errors.New("mine record without settle")
		}
		if err := s.ledger.Apply(record.Mine.Entries); err != nil {
			return err
		}
		return s.mining.Replay(*record.Mine)

	case journal.KindBuy:
		if record.Buy == nil {
			return errors.New("buy record without settle")
		}
		if err := s.ledger.Apply(record.Buy.Entries); err != nil {
			return err
		}
		return s.treasury.Replay(*record.Buy)
	}

	return fmt.Errorf("unknown record kind %q", record.Kind)
}

// =============================================================================

// newTreasury converts the launch file into the treasury auction.
func newTreasury(gen genesis.Genesis, lgr *ledger.Ledger, ev treasury.EventHandler, clock func() time.Time) (*treasury.Auction, error) {
	terms, err := toTerms(gen.Treasury.Terms)
	if err != nil {
		return nil, err
	}

	initPrice, err := genesis.ToBigInt(gen.Treasury.InitPrice)
	if err != nil {
		return nil, err
	}

	return treasury.New(treasury.Config{
		AccountID:         ledger.AccountID(gen.Treasury.AccountID),
		PaymentToken:      ledger.Symbol(gen.PaymentToken),
		PaymentReceiverID: ledger.AccountID(gen.Treasury.PaymentReceiverID),
		InitPrice:         initPrice,
		Terms:             terms,
		LaunchTime:        gen.Date,
		Ledger:            lgr,
		EvHandler:         ev,
		Clock:             clock,
	})
}

// newMining converts the launch file into the mining auction.
func newMining(gen genesis.Genesis, treasuryID ledger.AccountID, lgr *ledger.Ledger, ev mining.EventHandler, clock func() time.Time) (*mining.Auction, error) {
	terms, err := toTerms(gen.Mining.Terms)
	if err != nil {
		return nil, err
	}

	initialRate, err := genesis.ToBigInt(gen.Mining.InitialRate)
	if err != nil {
		return nil, err
	}

	tailRate, err := genesis.ToBigInt(gen.Mining.TailRate)
	if err != nil {
		return nil, err
	}

	return mining.New(mining.Config{
		MintToken:     ledger.Symbol(gen.MintToken),
		PaymentToken:  ledger.Symbol(gen.PaymentToken),
		TreasuryID:    treasuryID,
		TeamID:        ledger.AccountID(gen.Mining.TeamID),
		ProtocolID:    ledger.AccountID(gen.Mining.ProtocolID),
		HolderID:      ledger.AccountID(gen.Mining.HolderID),
		URI:           gen.Mining.URI,
		InitialRate:   initialRate,
		TailRate:      tailRate,
		HalvingPeriod: time.Duration(gen.Mining.HalvingPeriodSeconds) * time.Second,
		Terms:         terms,
		LaunchTime:    gen.Date,
		Ledger:        lgr,
		EvHandler:     ev,
		Clock:         clock,
	})
}

// toTerms converts launch file terms into validated auction terms.
func toTerms(t genesis.Terms) (epoch.Terms, error) {
	multiplier, err := genesis.ToBigInt(t.PriceMultiplier)
	if err != nil {
		return epoch.Terms{}, err
	}

	minInitPrice, err := genesis.ToBigInt(t.MinInitPrice)
	if err != nil {
		return epoch.Terms{}, err
	}

	return epoch.Terms{
		Period:          time.Duration(t.EpochPeriodSeconds) * time.Second,
		PriceMultiplier: multiplier,
		MinInitPrice:    minInitPrice,
	}, nil
}
