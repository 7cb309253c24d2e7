package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cuelabs",
	Short: "CueLABS - developer bounty platform",
	Long: `CueLABS is the backend for the Cuesoft developer bounty platform.

It provides a REST API for bounties, submissions, wallet points, and the
marketplace, backed by an Airtable base.

Run 'cuelabs serve' to start the server, or 'cuelabs seed' to load bounties
and market items into the base.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(linksCmd)
}
