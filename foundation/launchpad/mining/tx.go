package mining

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/heesho/launchpad/foundation/launchpad/ledger"
	"github.com/heesho/launchpad/foundation/launchpad/signature"
)

// MineTx is the intent to settle the current mining epoch. The miner field
// is who receives the emission right; the account that signs the tx pays
// the price.
type MineTx struct {
	MinerID  ledger.AccountID `json:"miner"`     // Account that becomes the new holder.
	EpochID  uint64           `json:"epoch_id"`  // Epoch the signer observed; the optimistic concurrency token.
	Deadline uint64           `json:"deadline"`  // Unix second after which the intent is stale.
	MaxPrice *big.Int         `json:"max_price"` // Price slippage bound.
	URI      string           `json:"uri"`       // Metadata attached to the won epoch.
}

// NewMineTx constructs a new mine transaction.
func NewMineTx(minerID ledger.AccountID, epochID uint64, deadline uint64, maxPrice *big.Int, uri string) (MineTx, error) {
	if !minerID.IsAccountID() || minerID.IsZero() {
		return MineTx{}, fmt.Errorf("miner account is not properly formatted")
	}

	tx := MineTx{
		MinerID:  minerID,
		EpochID:  epochID,
		Deadline: deadline,
		MaxPrice: maxPrice,
		URI:      uri,
	}

	return tx, nil
}

// Sign uses the specified private key to sign the transaction.
func (tx MineTx) Sign(privateKey *ecdsa.PrivateKey) (SignedMineTx, error) {
	if !tx.MinerID.IsAccountID() || tx.MinerID.IsZero() {
		return SignedMineTx{}, fmt.Errorf("miner account is not properly formatted")
	}

	v, r, s, err := signature.Sign(tx, privateKey)
	if err != nil {
		return SignedMineTx{}, err
	}

	signedTx := SignedMineTx{
		MineTx: tx,
		V:      v,
		R:      r,
		S:      s,
	}

	return signedTx, nil
}

// =============================================================================

// SignedMineTx is a signed version of the mine transaction. This is how
// wallets submit settle intents to the engine.
type SignedMineTx struct {
	MineTx
	V *big.Int `json:"v"` // Recovery identifier.
	R *big.Int `json:"r"` // First coordinate of the ECDSA signature.
	S *big.Int `json:"s"` // Second coordinate of the ECDSA signature.
}

// Validate verifies the transaction has a proper signature that conforms to
// our standards and checks the format of the miner account.
func (tx SignedMineTx) Validate() error {
	if !tx.MinerID.IsAccountID() || tx.MinerID.IsZero() {
		return errors.New("invalid account for miner")
	}

	if tx.MaxPrice == nil || tx.MaxPrice.Sign() < 0 {
		return errors.New("invalid max price")
	}

	if err := signature.VerifySignature(tx.V, tx.R, tx.S); err != nil {
		return err
	}

	return nil
}

// FromAccount extracts the account that signed, and therefore pays for,
// the transaction.
func (tx SignedMineTx) FromAccount() (ledger.AccountID, error) {
	address, err := signature.FromAddress(tx.MineTx, tx.V, tx.R, tx.S)
	return ledger.AccountID(address), err
}

// SignatureString returns the signature as a string.
func (tx SignedMineTx) SignatureString() string {
	return signature.SignatureString(tx.V, tx.R, tx.S)
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedMineTx) String() string {
	from, err := tx.FromAccount()
	if err != nil {
		from = "unknown"
	}

	return fmt.Sprintf("%s:%d", from, tx.EpochID)
}
