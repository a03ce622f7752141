package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	serverAddress string
	displayName   string
)

const (
	serverAddressKey = "server_address"
	displayNameKey   = "display_name"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sharepad",
	Short: "Client for the sharepad shared-buffer server",
	Long: `sharepad talks to a running sharepad server: list rooms, delete
empty ones, or join a room and follow its shared buffer live.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sharepad.yaml)")
	rootCmd.PersistentFlags().String("server", "localhost:3001", "host:port of the sharepad server")
	rootCmd.PersistentFlags().String("name", "", "display name used when joining rooms")

	viper.BindPFlag(serverAddressKey, rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag(displayNameKey, rootCmd.PersistentFlags().Lookup("name"))
	viper.SetDefault(serverAddressKey, "localhost:3001")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sharepad")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}

	serverAddress = viper.GetString(serverAddressKey)
	displayName = viper.GetString(displayNameKey)
	if displayName == "" {
		displayName = "guest-" + uuid.NewString()[:8]
	}
}

func apiURL(path string) string {
	return "http://" + serverAddress + path
}

func wsURL() string {
	return "ws://" + serverAddress + "/ws"
}
