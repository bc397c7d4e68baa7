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
	joinName string
	joinID   string
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join the game and print your participant id.",
	Run:   joinRun,
}

func init() {
	rootCmd.AddCommand(joinCmd)
	joinCmd.Flags().StringVarP(&joinName, "name", "n", "", "Display name to join with.")
	joinCmd.Flags().StringVarP(&joinID, "id", "i", "", "Existing participant id to rejoin with.")
}

func joinRun(cmd *cobra.Command, args []string) {
	req := struct {
		ParticipantID string `json:"participantId,omitempty"`
		Name          string `json:"name"`
	}{
		ParticipantID: joinID,
		Name:          joinName,
	}

	data, err := json.Marshal(req)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/game/join", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var joined struct {
		ParticipantID string `json:"participantId"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&joined); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Participant:", joined.ParticipantID)
	fmt.Println("Name:       ", joined.Name)
}
