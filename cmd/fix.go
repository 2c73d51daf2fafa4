package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/shoplens/seoaudit/pkg/checks"
	"github.com/shoplens/seoaudit/pkg/fixer"
	"github.com/shoplens/seoaudit/pkg/formatter"
	"github.com/shoplens/seoaudit/pkg/llm"
	"github.com/shoplens/seoaudit/pkg/model"
	"github.com/shoplens/seoaudit/pkg/probe"
	"github.com/shoplens/seoaudit/pkg/snapshot"
)

var applyFix bool

func NewFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix ITEM_TYPE ITEM_ID CHECK",
		Short: "Generate an AI fix for a detected issue",
		Long: `Generate a suggested value for one detected issue, and optionally apply it.

The item is re-audited first; CHECK names which of its issues to fix.

Examples:
  # Propose a better product title
  seoaudit fix product 42 title_length

  # Write a missing meta description and apply it
  seoaudit fix product 42 meta_description_missing --apply`,
		Args: cobra.ExactArgs(3),
		RunE: runFix,
	}

	addStoreFlags(cmd)
	cmd.Flags().BoolVar(&applyFix, "apply", false, "Apply the suggested fix to the catalog")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (claude, openai)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")

	return cmd
}

func runFix(cmd *cobra.Command, args []string) error {
	itemType, itemID, err := parseItemArgs(args[:2])
	if err != nil {
		return err
	}
	check := model.Check(args[2])

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	generator, err := llm.CreateFromEnv(llmProvider, llmModel)
	if err != nil {
		return err
	}

	ctx := context.Background()

	sp := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	sp.Suffix = " Auditing item..."
	sp.Start()
	issues, err := checks.NewAuditor(s, probe.New()).AuditItem(ctx, itemType, itemID)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	var target *model.Issue
	for i := range issues {
		if issues[i].Check == check {
			target = &issues[i]
			break
		}
	}
	if target == nil {
		printSuccess(fmt.Sprintf("No %q issue detected on this item", check))
		return nil
	}

	sp.Suffix = " Generating fix with AI..."
	sp.Start()
	fix, err := fixer.NewGenerator(generator, snapshot.New(s)).GenerateFix(ctx, *target)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("fix generation failed: %w", err)
	}
	printSuccess("Fix generated")

	if err := formatter.DisplayFix(fix, outputFormat); err != nil {
		return err
	}

	if !applyFix {
		return nil
	}

	if err := fixer.NewApplicator(s).Apply(ctx, *target, *fix); err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}
	printSuccess(fmt.Sprintf("Applied to %s", fix.Field))
	return nil
}
