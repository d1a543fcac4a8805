package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/heesho/launchpad/foundation/launchpad/ledger"
	"github.com/heesho/launchpad/foundation/launchpad/treasury"
	"github.com/spf13/cobra"
)

var (
	buyEpoch      uint64
	buyMaxPayment string
	buyAssets     []string
	buyDeadline   time.Duration
)

var buyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Settle the current treasury epoch and sweep the listed assets",
	Run:   buyRun,
}

func init() {
	rootCmd.AddCommand(buyCmd)
	buyCmd.Flags().Uint64VarP(&buyEpoch, "epoch", "e", 0, "Epoch id expected to settle.")
	buyCmd.Flags().StringVarP(&buyMaxPayment, "max-payment", "m", "0", "Highest acceptable payment.")
	buyCmd.Flags().StringSliceVarP(&buyAssets, "assets", "s", nil, "Symbols of the assets to sweep.")
	buyCmd.Flags().DurationVarP(&buyDeadline, "deadline", "d", time.Minute, "How long the intent stays valid.")
	buyCmd.MarkFlagRequired("assets")
}

func buyRun(cmd *cobra.Command, args []string) {
	privateKey, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	maxPayment, ok := new(big.Int).SetString(buyMaxPayment, 10)
	if !ok {
		log.Fatalf("invalid max payment %q", buyMaxPayment)
	}

	assets := make([]ledger.Symbol, len(buyAssets))
	for i, symbol := range buyAssets {
		assets[i] = ledger.Symbol(symbol)
	}

	receiverID := ledger.PublicKeyToAccountID(privateKey.PublicKey)
	deadline := uint64(time.Now().Add(buyDeadline).Unix())

	tx, err := treasury.NewBuyTx(assets, receiverID, buyEpoch, deadline, maxPayment)
	if err != nil {
		log.Fatal(err)
	}

	signedTx, err := tx.Sign(privateKey)
	if err != nil {
		log.Fatal(err)
	}

	data, err := json.Marshal(signedTx)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/treasury/buy", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(body))
}
