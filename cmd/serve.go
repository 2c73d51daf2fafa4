package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shoplens/seoaudit/pkg/checks"
	"github.com/shoplens/seoaudit/pkg/fixer"
	"github.com/shoplens/seoaudit/pkg/llm"
	"github.com/shoplens/seoaudit/pkg/probe"
	"github.com/shoplens/seoaudit/pkg/snapshot"
	"github.com/shoplens/seoaudit/pkg/web"
)

var listenAddr string

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the audit and fix API over HTTP",
		Long: `Start the HTTP API used by admin dashboards and automation.

Examples:
  seoaudit serve --addr :8080 --db store.db`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	addStoreFlags(cmd)
	cmd.Flags().StringVar(&listenAddr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (claude, openai)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	site, err := s.SiteSettings(context.Background())
	if err != nil {
		return err
	}
	generator, err := llm.CreateFromEnv(llmProvider, llmModel)
	if err != nil {
		return err
	}

	handler := web.NewHandler(web.Deps{
		Store:      s,
		Auditor:    checks.NewAuditor(s, probe.New()),
		API:        checks.NewAPIChecks(generator, s, s, site.URL),
		Generator:  fixer.NewGenerator(generator, snapshot.New(s)),
		Applicator: fixer.NewApplicator(s),
	})

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		printSuccess(fmt.Sprintf("Listening on %s", listenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
