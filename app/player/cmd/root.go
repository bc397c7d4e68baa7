// Package cmd contains the player app
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var url string

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the engine.")
}

var rootCmd = &cobra.Command{
	Use:   "player",
	Short: "Play rounds of the tx count game",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// wsURL converts the configured http url into its websocket form.
func wsURL() string {
	ws := strings.Replace(url, "https://", "wss://", 1)
	return strings.Replace(ws, "http://", "ws://", 1)
}
