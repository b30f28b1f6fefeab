package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "chat-server",
	Short:         "Website assistant chat service",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default: configs/config.yaml)")
	rootCmd.AddCommand(serveCmd, turnCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
