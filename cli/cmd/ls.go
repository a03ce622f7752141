package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type roomInfo struct {
	ID    string   `json:"id"`
	Users []string `json:"users"`
}

// lsCmd represents the ls command
var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List rooms and who is in them",
	Run: func(cmd *cobra.Command, args []string) {
		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Get(apiURL("/api/rooms"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing rooms: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error listing rooms: unexpected status %s\n", resp.Status)
			os.Exit(1)
		}

		var rooms []roomInfo
		if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
			fmt.Fprintf(os.Stderr, "Error decoding rooms list: %v\n", err)
			os.Exit(1)
		}

		for _, room := range rooms {
			if len(room.Users) == 0 {
				fmt.Println(room.ID)
				continue
			}
			fmt.Printf("%s\t[%s]\n", room.ID, strings.Join(room.Users, ", "))
		}
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
