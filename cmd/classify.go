package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"feedbackbot/internal/app"
	"feedbackbot/internal/config"
	"feedbackbot/internal/domain"
	"feedbackbot/internal/export"
	"feedbackbot/internal/httpx"
	"feedbackbot/internal/ingest"
)

var (
	classifyText         string
	classifyXLSX         string
	classifyJSON         bool
	classifyDiagnostics  bool
	classifyKeywordsOnly bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify [file|-]",
	Short: "Classify feedback from a file, stdin or --text",
	Long: `Classify feedback items and print one result per item.

Items come from a .txt, .csv, .xlsx, .docx or .pdf file, from stdin ("-", one item per line),
and/or from --text (split on new lines, ';' and '||'). Duplicates are removed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var fileItems []string
		if len(args) == 1 {
			items, err := readItems(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			fileItems = items
		}
		items := ingest.Collect(fileItems, classifyText)
		if len(items) == 0 {
			return fmt.Errorf("no feedback to classify: pass a file, '-' for stdin, or --text")
		}

		overrides := configOverrides()
		if classifyKeywordsOnly {
			overrides.Provider = config.ProviderNone
		}
		cfg := config.LoadConfigWith(overrides)
		httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
		resolver, err := app.NewResolver(cfg)
		if err != nil {
			return err
		}

		records := resolver.ClassifyAll(cmd.Context(), items)
		if !classifyDiagnostics {
			records = domain.StripDiagnostics(records)
		}

		if classifyXLSX != "" {
			if err := writeXLSXFile(classifyXLSX, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d results to %s\n", len(records), classifyXLSX)
		}

		if classifyJSON || classifyDiagnostics {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		return printTable(cmd.OutOrStdout(), records)
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyText, "text", "", "feedback text to classify")
	classifyCmd.Flags().StringVar(&classifyXLSX, "xlsx", "", "also write results to this .xlsx file")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print results as JSON")
	classifyCmd.Flags().BoolVar(&classifyDiagnostics, "diagnostics", false, "include diagnostics (implies --json)")
	classifyCmd.Flags().BoolVar(&classifyKeywordsOnly, "keywords-only", false, "skip the model and classify on keywords only")
}

func readItems(stdin io.Reader, path string) ([]string, error) {
	if path == "-" {
		return ingest.ExtractFeedbacks("stdin.txt", stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	items, err := ingest.ExtractFeedbacks(path, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return items, nil
}

func writeXLSXFile(path string, records []domain.ClassificationRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.WriteXLSX(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printTable(w io.Writer, records []domain.ClassificationRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "THEME\tSENTIMENT\tHIGHLIGHT\tINPUT")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.Theme, rec.Sentiment, rec.Highlight, rec.Input)
	}
	return tw.Flush()
}
