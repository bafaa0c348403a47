package main

import (
	"fmt"
	"os"

	"github.com/askdocs-ai/askdocs/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "askdocsd",
		Short: "Askdocs daemon and CLI",
		Long:  "Askdocs daemon for running the retrieval-augmented question answering API server",
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.IngestCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
