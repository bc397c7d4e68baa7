package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	guessParticipant string
	guessSequence    uint64
	guessValue       uint
)

// guessCmd represents the guess command
var guessCmd = &cobra.Command{
	Use:   "guess",
	Short: "Submit a guess for the open round.",
	Run:   guessRun,
}

func init() {
	rootCmd.AddCommand(guessCmd)
	guessCmd.Flags().StringVarP(&guessParticipant, "participant", "p", "", "Your participant id.")
	guessCmd.Flags().Uint64VarP(&guessSequence, "sequence", "s", 0, "Sequence of the round to guess in.")
	guessCmd.Flags().UintVarP(&guessValue, "value", "v", 0, "Transaction count you predict.")
}

func guessRun(cmd *cobra.Command, args []string) {
	req := struct {
		ParticipantID string `json:"participantId"`
		Sequence      uint64 `json:"sequence"`
		Value         uint   `json:"value"`
	}{
		ParticipantID: guessParticipant,
		Sequence:      guessSequence,
		Value:         guessValue,
	}

	data, err := json.Marshal(req)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/game/guess", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var result struct {
		Sequence uint64 `json:"sequence"`
		Value    uint   `json:"value"`
		Accepted bool   `json:"accepted"`
		Reason   string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatal(err)
	}

	if !result.Accepted {
		fmt.Println("Rejected:", result.Reason)
		return
	}

	fmt.Printf("Accepted: round %d value %d\n", result.Sequence, result.Value)
}
