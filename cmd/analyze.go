package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/shoplens/seoaudit/pkg/checks"
	"github.com/shoplens/seoaudit/pkg/formatter"
	"github.com/shoplens/seoaudit/pkg/llm"
	"github.com/shoplens/seoaudit/pkg/model"
	"github.com/shoplens/seoaudit/pkg/store"
)

var (
	focusKeyword string
	llmProvider  string
	llmModel     string
)

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run content analyses against a catalog item",
	}

	keywords := &cobra.Command{
		Use:   "keywords ITEM_TYPE ITEM_ID",
		Short: "Analyze keyword density with AI assistance",
		Long: `Score how well the focus keyword is used in an item's content.

Examples:
  seoaudit analyze keywords product 42 --keyword "trail running shoes"`,
		Args: cobra.ExactArgs(2),
		RunE: runKeywords,
	}
	keywords.Flags().StringVar(&focusKeyword, "keyword", "", "Focus keyword to score (required)")
	keywords.MarkFlagRequired("keyword")

	quality := &cobra.Command{
		Use:   "quality ITEM_TYPE ITEM_ID",
		Short: "Check content quality with AI assistance",
		Args:  cobra.ExactArgs(2),
		RunE:  runQuality,
	}

	duplicates := &cobra.Command{
		Use:   "duplicates ITEM_TYPE ITEM_ID",
		Short: "Find published products with near-identical copy",
		Args:  cobra.ExactArgs(2),
		RunE:  runDuplicates,
	}

	schema := &cobra.Command{
		Use:   "schema ITEM_TYPE ITEM_ID",
		Short: "Check structural completeness for product schema markup",
		Args:  cobra.ExactArgs(2),
		RunE:  runSchema,
	}

	links := &cobra.Command{
		Use:   "links ITEM_TYPE ITEM_ID",
		Short: "Suggest internal links for an item",
		Args:  cobra.ExactArgs(2),
		RunE:  runLinks,
	}

	for _, sub := range []*cobra.Command{keywords, quality, duplicates, schema, links} {
		addStoreFlags(sub)
		cmd.AddCommand(sub)
	}
	for _, sub := range []*cobra.Command{keywords, quality} {
		sub.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (claude, openai)")
		sub.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	}

	return cmd
}

func newAPIChecks(s *store.Store) (*checks.APIChecks, error) {
	site, err := s.SiteSettings(context.Background())
	if err != nil {
		return nil, err
	}
	generator, err := llm.CreateFromEnv(llmProvider, llmModel)
	if err != nil {
		return nil, err
	}
	return checks.NewAPIChecks(generator, s, s, site.URL), nil
}

// localAPIChecks builds the API surface without a generative client, for
// the local-only analyses (duplicates, schema, links).
func localAPIChecks(s *store.Store) (*checks.APIChecks, error) {
	site, err := s.SiteSettings(context.Background())
	if err != nil {
		return nil, err
	}
	return checks.NewAPIChecks(nil, s, s, site.URL), nil
}

func runKeywords(cmd *cobra.Command, args []string) error {
	itemType, itemID, err := parseItemArgs(args)
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	api, err := newAPIChecks(s)
	if err != nil {
		return err
	}
	content, err := loadItemContent(context.Background(), s, itemType, itemID)
	if err != nil {
		return err
	}

	sp := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	sp.Suffix = " Analyzing keyword density with AI..."
	sp.Start()
	analysis, err := api.AnalyzeKeywordDensity(context.Background(), content, focusKeyword)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("keyword analysis failed: %w", err)
	}
	printSuccess("Analysis complete")

	return formatter.DisplayAnalysis(analysis, outputFormat)
}

func runQuality(cmd *cobra.Command, args []string) error {
	itemType, itemID, err := parseItemArgs(args)
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	api, err := newAPIChecks(s)
	if err != nil {
		return err
	}
	content, err := loadItemContent(context.Background(), s, itemType, itemID)
	if err != nil {
		return err
	}

	sp := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	sp.Suffix = " Checking content quality with AI..."
	sp.Start()
	analysis, err := api.CheckContentQuality(context.Background(), content, string(itemType))
	sp.Stop()
	if err != nil {
		return fmt.Errorf("quality check failed: %w", err)
	}
	printSuccess("Analysis complete")

	return formatter.DisplayAnalysis(analysis, outputFormat)
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	itemType, itemID, err := parseItemArgs(args)
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	api, err := localAPIChecks(s)
	if err != nil {
		return err
	}
	content, err := loadItemContent(context.Background(), s, itemType, itemID)
	if err != nil {
		return err
	}

	report, err := api.DetectDuplicates(context.Background(), content, itemID, itemType)
	if err != nil {
		return fmt.Errorf("duplicate scan failed: %w", err)
	}
	return formatter.DisplayDuplicates(report, outputFormat)
}

func runSchema(cmd *cobra.Command, args []string) error {
	itemType, itemID, err := parseItemArgs(args)
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	api, err := localAPIChecks(s)
	if err != nil {
		return err
	}
	report, err := api.ValidateSchema(context.Background(), itemID, itemType)
	if err != nil {
		return fmt.Errorf("schema check failed: %w", err)
	}
	return formatter.DisplaySchema(report, outputFormat)
}

func runLinks(cmd *cobra.Command, args []string) error {
	itemType, itemID, err := parseItemArgs(args)
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	api, err := localAPIChecks(s)
	if err != nil {
		return err
	}
	suggestions, err := api.SuggestInternalLinks(context.Background(), itemID, itemType)
	if err != nil {
		return fmt.Errorf("link suggestion failed: %w", err)
	}
	return formatter.DisplayLinks(suggestions, outputFormat)
}

func loadItemContent(ctx context.Context, s *store.Store, itemType model.ItemType, id int64) (string, error) {
	switch itemType {
	case model.ItemProduct:
		p, err := s.GetProduct(ctx, id)
		if err != nil {
			return "", err
		}
		return p.Description + " " + p.ShortDescription, nil
	case model.ItemCategory:
		t, err := s.GetTerm(ctx, id)
		if err != nil {
			return "", err
		}
		return t.Description, nil
	default:
		p, err := s.GetPost(ctx, id)
		if err != nil {
			return "", err
		}
		return p.Content, nil
	}
}
