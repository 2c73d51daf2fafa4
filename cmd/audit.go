package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shoplens/seoaudit/pkg/checks"
	"github.com/shoplens/seoaudit/pkg/formatter"
	"github.com/shoplens/seoaudit/pkg/model"
	"github.com/shoplens/seoaudit/pkg/probe"
	"github.com/shoplens/seoaudit/pkg/store"
)

var (
	dbPath       string
	outputFormat string
	auditSite    bool
)

func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [ITEM_TYPE ITEM_ID]",
		Short: "Audit catalog items or store settings for SEO issues",
		Long: `Run the local SEO rule set against one catalog item or the whole store.

Examples:
  # Audit a product
  seoaudit audit product 42

  # Audit a category page
  seoaudit audit category 7

  # Audit the store settings and homepage
  seoaudit audit --site

  # Machine-readable output
  seoaudit audit product 42 -o json`,
		Args: cobra.RangeArgs(0, 2),
		RunE: runAudit,
	}

	addStoreFlags(cmd)
	cmd.Flags().BoolVar(&auditSite, "site", false, "Audit the store settings and homepage")

	return cmd
}

func runAudit(cmd *cobra.Command, args []string) error {
	if !auditSite && len(args) != 2 {
		return fmt.Errorf("specify ITEM_TYPE and ITEM_ID, or use --site")
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	auditor := checks.NewAuditor(s, probe.New())
	ctx := context.Background()

	sp := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	sp.Suffix = " Auditing..."
	sp.Start()

	var issues []model.Issue
	if auditSite {
		issues, err = auditor.AuditSite(ctx)
	} else {
		var itemType model.ItemType
		var itemID int64
		itemType, itemID, err = parseItemArgs(args)
		if err != nil {
			sp.Stop()
			return err
		}
		issues, err = auditor.AuditItem(ctx, itemType, itemID)
	}
	sp.Stop()
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}
	printSuccess(fmt.Sprintf("Audit complete: %d issue(s)", len(issues)))

	return formatter.DisplayIssues(issues, checks.Score(issues), outputFormat)
}

func addStoreFlags(cmd *cobra.Command) {
	defaultDB := os.Getenv("SEOAUDIT_DB")
	if defaultDB == "" {
		defaultDB = "seoaudit.db"
	}
	cmd.Flags().StringVar(&dbPath, "db", defaultDB, "Path to the catalog database")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "human", "Output format (human, json, yaml)")
}

func openStore() (*store.Store, error) {
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	return s, nil
}

func parseItemArgs(args []string) (model.ItemType, int64, error) {
	itemType := model.ItemType(args[0])
	switch itemType {
	case model.ItemProduct, model.ItemCategory, model.ItemPage, model.ItemPost:
	default:
		return "", 0, fmt.Errorf("unknown item type %q (product, category, page, post)", args[0])
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("item id must be a positive integer, got %q", args[1])
	}
	return itemType, id, nil
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Printf("✓ %s\n", msg)
}

func printError(msg string) {
	red := color.New(color.FgRed)
	red.Printf("✗ %s\n", msg)
}
