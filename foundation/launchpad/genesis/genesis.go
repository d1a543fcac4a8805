// Package genesis maintains access to the launch file, which declares the
// tokens, the construction terms of both auctions and the starting payment
// token balances.
package genesis

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"
)

// Terms describes the shared Dutch auction parameters as they appear in
// the launch file. Amounts are decimal strings since they exceed the range
// of JSON numbers.
type Terms struct {
	EpochPeriodSeconds uint64 `json:"epoch_period_seconds" validate:"required"`    // Fixed length of one auction round.
	PriceMultiplier    string `json:"price_multiplier" validate:"required,number"` // Fixed point at 1e18 scale.
	MinInitPrice       string `json:"min_init_price" validate:"required,number"`   // Floor for the next epoch's init price.
}

// Mining describes the mining auction's launch parameters.
type Mining struct {
	Terms
	TeamID               string `json:"team"`                          // Team fee receiver, may be the zero address.
	ProtocolID           string `json:"protocol"`                      // Protocol fee receiver, may be the zero address.
	HolderID             string `json:"holder" validate:"required"`    // Holder of the emission right before the first settle.
	URI                  string `json:"uri"`
	InitialRate          string `json:"initial_rate" validate:"required,number"`
	TailRate             string `json:"tail_rate" validate:"required,number"`
	HalvingPeriodSeconds uint64 `json:"halving_period_seconds" validate:"required"`
}

// Treasury describes the treasury auction's launch parameters.
type Treasury struct {
	Terms
	AccountID         string `json:"account" validate:"required"`             // The auction's own ledger account, where fees accrue.
	PaymentReceiverID string `json:"payment_receiver" validate:"required"`    // Where buy proceeds are sent.
	InitPrice         string `json:"init_price" validate:"required,number"`   // Price the first epoch opens at.
}

// Genesis represents the launch file.
type Genesis struct {
	Date         time.Time         `json:"date"`
	ChainID      uint16            `json:"chain_id"`
	MintToken    string            `json:"mint_token" validate:"required"`    // Symbol of the token the mining auction issues.
	PaymentToken string            `json:"payment_token" validate:"required"` // Symbol both auctions are paid in.
	Mining       Mining            `json:"mining"`
	Treasury     Treasury          `json:"treasury"`
	Balances     map[string]string `json:"balances"` // Starting payment token balances.
}

// =============================================================================

// Load opens and consumes the launch file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// ToBigInt converts a decimal string amount from the launch file.
func ToBigInt(amount string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}

	return value, nil
}
