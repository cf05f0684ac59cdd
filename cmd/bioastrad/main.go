package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orbital-research/bioastra/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bioastrad",
		Short: "Bioastra daemon",
		Long:  "Bioastra daemon for running the API server and ingesting document corpora",
	}

	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.IngestCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
