package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

type epochStatus struct {
	EpochID   uint64    `json:"epoch_id"`
	InitPrice *big.Int  `json:"init_price"`
	StartTime time.Time `json:"start_time"`
	Price     *big.Int  `json:"price"`
	Rate      *big.Int  `json:"rate,omitempty"`
	Holder    string    `json:"holder,omitempty"`
	URI       string    `json:"uri,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status [mining|treasury]",
	Short: "Print the live terms of an auction epoch",
	Args:  cobra.ExactArgs(1),
	Run:   statusRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/%s/epoch", url, args[0]))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var status epochStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		log.Fatal(err)
	}

	fmt.Println("epoch:     ", status.EpochID)
	fmt.Println("init price:", status.InitPrice)
	fmt.Println("price:     ", status.Price)
	fmt.Println("start time:", status.StartTime)

	if status.Rate != nil {
		fmt.Println("rate:      ", status.Rate)
		fmt.Println("holder:    ", status.Holder)
		fmt.Println("uri:       ", status.URI)
	}
}
