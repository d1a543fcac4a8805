package treasury

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/heesho/launchpad/foundation/launchpad/ledger"
	"github.com/heesho/launchpad/foundation/launchpad/signature"
)

// BuyTx is the intent to settle the current treasury epoch. The account
// that signs the tx pays the payment amount; the listed assets are swept in
// full to the receiver.
type BuyTx struct {
	Assets     []ledger.Symbol  `json:"assets"`      // Tokens whose accumulated balance is bought.
	ReceiverID ledger.AccountID `json:"receiver"`    // Account the swept assets are sent to.
	EpochID    uint64           `json:"epoch_id"`    // Epoch the signer observed; the optimistic concurrency token.
	Deadline   uint64           `json:"deadline"`    // Unix second after which the intent is stale.
	MaxPayment *big.Int         `json:"max_payment"` // Payment slippage bound.
}

// NewBuyTx constructs a new buy transaction.
func NewBuyTx(assets []ledger.Symbol, receiverID ledger.AccountID, epochID uint64, deadline uint64, maxPayment *big.Int) (BuyTx, error) {
	if !receiverID.IsAccountID() || receiverID.IsZero() {
		return BuyTx{}, fmt.Errorf("receiver account is not properly formatted")
	}

	tx := BuyTx{
		Assets:     assets,
		ReceiverID: receiverID,
		EpochID:    epochID,
		Deadline:   deadline,
		MaxPayment: maxPayment,
	}

	return tx, nil
}

// Sign uses the specified private key to sign the transaction.
func (tx BuyTx) Sign(privateKey *ecdsa.PrivateKey) (SignedBuyTx, error) {
	if !tx.ReceiverID.IsAccountID() || tx.ReceiverID.IsZero() {
		return SignedBuyTx{}, fmt.Errorf("receiver account is not properly formatted")
	}

	v, r, s, err := signature.Sign(tx, privateKey)
	if err != nil {
		return SignedBuyTx{}, err
	}

	signedTx := SignedBuyTx{
		BuyTx: tx,
		V:     v,
		R:     r,
		S:     s,
	}

	return signedTx, nil
}

// =============================================================================

// SignedBuyTx is a signed version of the buy transaction.
type SignedBuyTx struct {
	BuyTx
	V *big.Int `json:"v"` // Recovery identifier.
	R *big.Int `json:"r"` // First coordinate of the ECDSA signature.
	S *big.Int `json:"s"` // Second coordinate of the ECDSA signature.
}

// Validate verifies the transaction has a proper signature that conforms to
// our standards and checks the format of the receiver account.
func (tx SignedBuyTx) Validate() error {
	if !tx.ReceiverID.IsAccountID() || tx.ReceiverID.IsZero() {
		return errors.New("invalid account for receiver")
	}

	if tx.MaxPayment == nil || tx.MaxPayment.Sign() < 0 {
		return errors.New("invalid max payment")
	}

	if err := signature.VerifySignature(tx.V, tx.R, tx.S); err != nil {
		return err
	}

	return nil
}

// FromAccount extracts the account that signed, and therefore pays for,
// the transaction.
func (tx SignedBuyTx) FromAccount() (ledger.AccountID, error) {
	address, err := signature.FromAddress(tx.BuyTx, tx.V, tx.R, tx.S)
	return ledger.AccountID(address), err
}

// SignatureString returns the signature as a string.
func (tx SignedBuyTx) SignatureString() string {
	return signature.SignatureString(tx.V, tx.R, tx.S)
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedBuyTx) String() string {
	from, err := tx.FromAccount()
	if err != nil {
		from = "unknown"
	}

	return fmt.Sprintf("%s:%d", from, tx.EpochID)
}
