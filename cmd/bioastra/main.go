package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orbital-research/bioastra/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "bioastra",
		Short: "Bioastra CLI - Ask questions about scientific documents",
		Long: `Bioastra CLI streams role-structured answers built from an ingested
document corpus.

Environment variables:
  BIOASTRA_API_TOKEN   Bearer token for authentication (optional)
  BIOASTRA_API_URL     API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().String("token", "", "Bearer token for authentication (overrides env)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.DocsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
