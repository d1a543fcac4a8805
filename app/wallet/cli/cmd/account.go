package cmd

import (
	"fmt"
	"log"

	"github.com/heesho/launchpad/foundation/launchpad/ledger"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the account id for the wallet",
	Run:   accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func accountRun(cmd *cobra.Command, args []string) {
	privateKey, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(ledger.PublicKeyToAccountID(privateKey.PublicKey))
}
