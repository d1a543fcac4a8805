package public

import (
	"math/big"
	"time"

	"github.com/heesho/launchpad/foundation/launchpad/ledger"
)

// epochInfo represents the live terms of an auction epoch.
type epochInfo struct {
	EpochID   uint64    `json:"epoch_id"`
	InitPrice *big.Int  `json:"init_price"`
	StartTime time.Time `json:"start_time"`
	Price     *big.Int  `json:"price"`
}

// miningInfo represents the live terms of the mining auction.
type miningInfo struct {
	epochInfo
	Rate     *big.Int `json:"rate"`
	Holder   string   `json:"holder"`
	HolderID string   `json:"holder_id"`
	URI      string   `json:"uri"`
}

// treasuryInfo represents the live terms of the treasury auction.
type treasuryInfo struct {
	epochInfo
	AccountID string `json:"account_id"`
}

// balance represents an account balance for a single token.
type balance struct {
	AccountID ledger.AccountID `json:"account_id"`
	Name      string           `json:"name"`
	Amount    *big.Int         `json:"amount"`
}

// balanceInfo represents the balances response for a token.
type balanceInfo struct {
	Symbol   ledger.Symbol `json:"symbol"`
	Balances []balance     `json:"balances"`
}

// settleInfo represents the outcome of a settled epoch.
type settleInfo struct {
	Status    string   `json:"status"`
	EpochID   uint64   `json:"epoch_id"`
	Price     *big.Int `json:"price"`
	Mint      *big.Int `json:"mint,omitempty"`
	Payment   *big.Int `json:"payment,omitempty"`
	InitPrice *big.Int `json:"init_price"`
}
