package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"

	"github.com/heesho/launchpad/foundation/launchpad/ledger"
	"github.com/spf13/cobra"
)

var balanceSymbol string

type balance struct {
	AccountID string   `json:"account_id"`
	Name      string   `json:"name"`
	Amount    *big.Int `json:"amount"`
}

type balanceInfo struct {
	Symbol   string    `json:"symbol"`
	Balances []balance `json:"balances"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the wallet's balance for a token",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&balanceSymbol, "symbol", "s", "", "Symbol of the token.")
	balanceCmd.MarkFlagRequired("symbol")
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	accountID := ledger.PublicKeyToAccountID(privateKey.PublicKey)
	fmt.Println("for account:", accountID)

	resp, err := http.Get(fmt.Sprintf("%s/v1/balances/%s/%s", url, balanceSymbol, accountID))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var info balanceInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		log.Fatal(err)
	}

	for _, bal := range info.Balances {
		fmt.Println(info.Symbol, bal.Amount)
	}
}
