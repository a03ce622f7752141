package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// rmCmd represents the rm command
var rmCmd = &cobra.Command{
	Use:   "rm <room>",
	Short: "Delete an empty room",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		room := args[0]
		req, err := http.NewRequest(http.MethodDelete, apiURL("/api/rooms/"+room), nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building request: %v\n", err)
			os.Exit(1)
		}

		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting room: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusNoContent:
			fmt.Printf("Room %s deleted\n", room)
		case http.StatusNotFound:
			fmt.Fprintf(os.Stderr, "Room %s not found\n", room)
			os.Exit(1)
		case http.StatusConflict:
			fmt.Fprintf(os.Stderr, "Room %s is not empty\n", room)
			os.Exit(1)
		default:
			fmt.Fprintf(os.Stderr, "Error deleting room: unexpected status %s\n", resp.Status)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
