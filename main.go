package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shoplens/seoaudit/cmd"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	// Optional .env for API keys and the database path.
	_ = godotenv.Load()

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "seoaudit",
		Short: "AI-powered SEO auditing for e-commerce catalogs",
		Long: `seoaudit scans products, categories, pages and store settings for SEO
issues, and uses AI to generate and apply fixes.`,
		SilenceUsage: true,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(
		cmd.NewAuditCmd(),
		cmd.NewAnalyzeCmd(),
		cmd.NewFixCmd(),
		cmd.NewServeCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("seoaudit version %s\n", version)
		},
	}
}
