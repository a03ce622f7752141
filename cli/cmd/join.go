package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

type helloPayload struct {
	Channel  string `json:"channel"`
	Username string `json:"username"`
}

type serverEvent struct {
	Type     string  `json:"type"`
	Username string  `json:"username,omitempty"`
	Value    *string `json:"value,omitempty"`
}

// joinCmd represents the join command
var joinCmd = &cobra.Command{
	Use:   "join <room>",
	Short: "Join a room and follow its shared buffer",
	Long: `Joins a room and prints the shared buffer as other participants
update it. Every line typed on stdin replaces the room's buffer.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		room := args[0]

		conn, _, err := websocket.DefaultDialer.Dial(wsURL(), nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to %s: %v\n", wsURL(), err)
			os.Exit(1)
		}
		defer conn.Close()

		hello, err := json.Marshal(helloPayload{Channel: room, Username: displayName})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding hello: %v\n", err)
			os.Exit(1)
		}

		// The connection is written to from the stdin loop and the pong
		// responder, so writes share a lock.
		var writeMu sync.Mutex
		writeMessage := func(messageType int, data []byte) error {
			writeMu.Lock()
			defer writeMu.Unlock()
			return conn.WriteMessage(messageType, data)
		}

		if err := writeMessage(websocket.TextMessage, hello); err != nil {
			fmt.Fprintf(os.Stderr, "Error joining room: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("joined #%s as %s\n", room, displayName)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				msgType, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				if msgType == websocket.BinaryMessage {
					if len(data) > 0 && data[0] == 0x9 {
						_ = writeMessage(websocket.BinaryMessage, []byte{0xA})
					}
					continue
				}

				var ev serverEvent
				if err := json.Unmarshal(data, &ev); err != nil {
					continue
				}
				switch ev.Type {
				case "message":
					if ev.Value != nil {
						fmt.Printf("%s: %s\n", ev.Username, *ev.Value)
					}
				case "join":
					fmt.Printf("* %s joined\n", ev.Username)
				case "leave":
					fmt.Printf("* %s left\n", ev.Username)
				case "error":
					if ev.Value != nil {
						fmt.Fprintf(os.Stderr, "server error: %s\n", *ev.Value)
					}
					return
				}
			}
		}()

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case <-done:
				return
			default:
			}
			if err := writeMessage(websocket.TextMessage, scanner.Bytes()); err != nil {
				fmt.Fprintf(os.Stderr, "Error sending update: %v\n", err)
				return
			}
		}
		_ = writeMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		<-done
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)
}
