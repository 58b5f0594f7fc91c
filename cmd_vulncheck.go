package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"corp/sysreport/collect"
	"corp/sysreport/core"
	"corp/sysreport/vuln"
)

const msgFeedUnavailable = "Unable to retrieve vulnerability information. Please check the logs for more details."

// osSource identitas OS untuk pencocokan
type osSource interface {
	OSDetails(ctx context.Context) core.OSDetails
	ProductName(ctx context.Context, d core.OSDetails) string
}

// feedSource sumber record kerentanan
type feedSource interface {
	Fetch(ctx context.Context, documentID string) ([]vuln.Record, error)
}

func newVulncheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vulncheck",
		Short: "compare the OS build against the vulnerability feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			if f.Changed("document-id") {
				cfg.Feed.DocumentID, _ = f.GetString("document-id")
			}
			if f.Changed("feed-url") {
				cfg.Feed.URLTemplate, _ = f.GetString("feed-url")
			}
			if f.Changed("timeout") {
				cfg.Feed.Timeout, _ = f.GetDuration("timeout")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			docID := cfg.Feed.DocumentID
			if docID == "" {
				docID = vuln.DefaultDocumentID(time.Now())
			}
			fetcher := vuln.NewFetcher(cfg.Feed.URLTemplate, cfg.Feed.Timeout, logger)
			defer fetcher.Close()

			runVulncheck(cmd.Context(), cmd.OutOrStdout(), collect.New(logger), fetcher, docID, logger)
			return nil
		},
	}
	cmd.Flags().String("document-id", "", "feed document ID (default: current month, e.g. 2024-Oct)")
	cmd.Flags().String("feed-url", vuln.DefaultURLTemplate, "feed URL template with {document_id}")
	cmd.Flags().Duration("timeout", vuln.DefaultTimeout, "feed request timeout")
	return cmd
}

// runVulncheck: ambil feed, tampilkan OS details, lalu hasil pencocokan.
// Kegagalan feed tidak dianggap error proses.
func runVulncheck(ctx context.Context, out io.Writer, src osSource, feed feedSource, docID string, log *zap.Logger) {
	records, err := feed.Fetch(ctx, docID)
	if err != nil {
		fmt.Fprintln(out, msgFeedUnavailable)
		return
	}

	details := src.OSDetails(ctx)
	if details == nil {
		details = core.OSDetails{}
	}
	if name := src.ProductName(ctx, details); name != "" {
		details[core.KeyOS] = name
	}

	fmt.Fprintln(out, "Operating System Details:")
	log.Info("Operating System Details:")
	for _, p := range details.Pairs() {
		fmt.Fprintf(out, "%s: %s\n", p.Key, p.Value)
		log.Info(p.Key + ": " + p.Value)
	}

	a := vuln.Assess(details, records, log)
	fmt.Fprintln(out, a.Message)
	log.Info(a.Message, zap.String("document_id", docID), zap.Int("records", len(records)))
}
