package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/mise-backend/internal/forecast"
	"github.com/angelmondragon/mise-backend/pkg/enums"
	"github.com/angelmondragon/mise-backend/pkg/env"
	"github.com/angelmondragon/mise-backend/pkg/insightsclient"
)

type runOptions struct {
	baseURL     string
	token       string
	tenantID    string
	requestType string
	asJSON      bool
	quiet       bool
}

func runCmd() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Stream an insight and print reconciled reorder suggestions",
		Long: `Stream an insight and print reconciled reorder suggestions.

The baseline is fetched alongside the stream. A completed stream also carries
the baseline built from the same inventory snapshot as the AI brief, and that
copy is preferred; the separately fetched one is only used when the server
does not send it, and may then reflect slightly newer stock levels.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runInsight(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.baseURL, "api", env.Get(envAPIURL, "http://localhost:8080"), "API base URL (env "+envAPIURL+")")
	cmd.Flags().StringVar(&opts.token, "token", env.Get(envAPIToken, ""), "Bearer token (env "+envAPIToken+")")
	cmd.Flags().StringVar(&opts.tenantID, "tenant", "", "Tenant id")
	cmd.Flags().StringVar(&opts.requestType, "type", enums.InsightReorderForecast.String(), "Request type")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print reconciled suggestions as JSON")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not echo streamed text")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func runInsight(ctx context.Context, opts runOptions, stdout, stderr io.Writer) error {
	client, err := insightsclient.New(opts.baseURL, opts.token, http.DefaultClient)
	if err != nil {
		return err
	}

	var (
		baseline []forecast.Suggestion
		result   *insightsclient.StreamResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := client.Baseline(gctx, opts.tenantID)
		if err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		baseline = out
		return nil
	})
	g.Go(func() error {
		var echo func(string)
		if !opts.quiet {
			echo = func(chunk string) { fmt.Fprint(stderr, chunk) }
		}
		out, err := client.Stream(gctx, opts.tenantID, enums.InsightRequestType(opts.requestType), echo)
		result = out
		if err != nil {
			return fmt.Errorf("stream: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, insightsclient.ErrTruncated) {
			fmt.Fprintln(stderr, "\n\nresponse was cut off; suggestions were not reconciled")
			if result != nil && result.RequestID != "" {
				fmt.Fprintf(stderr, "request id: %s\n", result.RequestID)
			}
		}
		return err
	}
	if !opts.quiet {
		fmt.Fprintln(stderr)
	}

	if result.Baseline != nil {
		baseline = result.Baseline
	}
	merged := forecast.Reconcile(baseline, result.Text)
	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(merged)
	}
	return renderTable(stdout, merged)
}

func renderTable(w io.Writer, suggestions []forecast.Suggestion) error {
	if len(suggestions) == 0 {
		_, err := fmt.Fprintln(w, "No ingredients need reordering.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRIORITY\tINGREDIENT\tON HAND\tREORDER\tDAYS LEFT\tSOURCE\tREASON")
	for _, s := range suggestions {
		source := "baseline"
		if s.AIEnhanced {
			source = "ai"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			strings.ToUpper(s.Priority.String()),
			s.Name,
			quantity(s.CurrentStock, s.Unit),
			quantity(s.ReorderAmount, s.Unit),
			s.DaysUntilStockout,
			source,
			s.Reasoning,
		)
	}
	return tw.Flush()
}

func quantity(v float64, unit string) string {
	return strings.TrimSpace(fmt.Sprintf("%g %s", v, unit))
}
