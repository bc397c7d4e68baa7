package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var watchParticipant string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream the live game events to the terminal.",
	Run:   watchRun,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchParticipant, "participant", "p", "", "Participant id to receive unicast results for.")
}

func watchRun(cmd *cobra.Command, args []string) {
	endpoint := fmt.Sprintf("%s/v1/game/events", wsURL())
	if watchParticipant != "" {
		endpoint = fmt.Sprintf("%s?participant=%s", endpoint, watchParticipant)
	}

	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			fmt.Println(string(msg))
		}
	}()

	select {
	case <-shutdown:
	case <-done:
	}
}
