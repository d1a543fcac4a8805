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
	"github.com/heesho/launchpad/foundation/launchpad/mining"
	"github.com/spf13/cobra"
)

var (
	mineEpoch    uint64
	mineMaxPrice string
	mineURI      string
	mineDeadline time.Duration
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Settle the current mining epoch and take over the emission right",
	Run:   mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().Uint64VarP(&mineEpoch, "epoch", "e", 0, "Epoch id expected to settle.")
	mineCmd.Flags().StringVarP(&mineMaxPrice, "max-price", "m", "0", "Highest acceptable price.")
	mineCmd.Flags().StringVarP(&mineURI, "uri", "i", "", "Uri to attach to the emission right.")
	mineCmd.Flags().DurationVarP(&mineDeadline, "deadline", "d", time.Minute, "How long the intent stays valid.")
}

func mineRun(cmd *cobra.Command, args []string) {
	privateKey, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	maxPrice, ok := new(big.Int).SetString(mineMaxPrice, 10)
	if !ok {
		log.Fatalf("invalid max price %q", mineMaxPrice)
	}

	minerID := ledger.PublicKeyToAccountID(privateKey.PublicKey)
	deadline := uint64(time.Now().Add(mineDeadline).Unix())

	tx, err := mining.NewMineTx(minerID, mineEpoch, deadline, maxPrice, mineURI)
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

	resp, err := http.Post(fmt.Sprintf("%s/v1/mining/mine", url), "application/json", bytes.NewBuffer(data))
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
