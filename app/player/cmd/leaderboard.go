package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print the current standings.",
	Run:   leaderboardRun,
}

func init() {
	rootCmd.AddCommand(leaderboardCmd)
}

func leaderboardRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/game/leaderboard", url))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var standings struct {
		TopN []struct {
			ParticipantID string `json:"participantId"`
			Name          string `json:"name"`
			Wins          int    `json:"wins"`
			CurrentStreak int    `json:"currentStreak"`
			RoundsPlayed  int    `json:"roundsPlayed"`
		} `json:"topN"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&standings); err != nil {
		log.Fatal(err)
	}

	for i, entry := range standings.TopN {
		fmt.Printf("%3d. %-20s wins %3d streak %3d played %4d\n",
			i+1, entry.Name, entry.Wins, entry.CurrentStreak, entry.RoundsPlayed)
	}
}
