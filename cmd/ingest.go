package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/fetch"
	"github.com/gaurav-prasanna/reportpipe/core/ingest"
	"github.com/gaurav-prasanna/reportpipe/core/record"
	"github.com/gaurav-prasanna/reportpipe/core/session"
	"github.com/spf13/cobra"
)

var (
	flagIngestJSON bool
	flagCollection string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Normalize uploads and summarize the result",
	Long: `Ingest runs each file through upload normalization: images are re-encoded,
PDFs rasterized page by page and spreadsheets parsed into rows.

With --collection the files are also checked against what that collection
accepts.

Examples:
  reportpipe ingest photo.jpg attendance.xlsx
  reportpipe ingest ./uploads --collection attendance --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().BoolVar(&flagIngestJSON, "json", false, "Print a JSON summary")
	ingestCmd.Flags().StringVar(&flagCollection, "collection", "", "Check files against a collection (photos, attendance, brochure, approval, feedback)")
}

// assetSummary is the printable shape of one ingested file.
type assetSummary struct {
	File    string          `json:"file"`
	ID      string          `json:"id,omitempty"`
	Kind    core.SourceKind `json:"kind,omitempty"`
	Pages   int             `json:"pages,omitempty"`
	Columns []string        `json:"columns,omitempty"`
	Rows    int             `json:"rows,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func summarize(a core.NormalizedAsset) assetSummary {
	return assetSummary{
		File:    a.Name,
		ID:      a.ID,
		Kind:    a.Kind,
		Pages:   len(a.Pages),
		Columns: a.Columns,
		Rows:    len(a.Rows),
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	files, fetchErrs := loadFiles(ctx, fetch.New(), args)

	pipeline := ingest.New(cfg.PipelineConfig(log))
	var summaries []assetSummary
	for _, e := range fetchErrs {
		summaries = append(summaries, assetSummary{Error: e.Error()})
	}
	if flagCollection != "" {
		c, err := core.ParseCollection(flagCollection)
		if err != nil {
			return err
		}
		s := session.New(record.New(), session.Config{Pipeline: pipeline, Logger: log})
		assets, errs := s.Ingest(ctx, c, files)
		for _, a := range assets {
			summaries = append(summaries, summarize(a))
		}
		for _, e := range errs {
			summaries = append(summaries, assetSummary{File: errorFile(e), Error: e.Error()})
		}
	} else {
		for _, r := range pipeline.IngestBatch(ctx, files) {
			if r.Err != nil {
				summaries = append(summaries, assetSummary{File: r.File, Error: r.Err.Error()})
				continue
			}
			summaries = append(summaries, summarize(r.Asset))
		}
	}

	if flagIngestJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	var failed int
	for _, s := range summaries {
		switch {
		case s.Error != "" && s.File == "":
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s\n", s.Error)
		case s.Error != "":
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %s\n", s.File, s.Error)
		case s.Kind == core.KindSpreadsheet:
			fmt.Fprintf(os.Stdout, "✓ %s: %s, %d columns, %d rows\n", s.File, s.Kind, len(s.Columns), s.Rows)
		default:
			fmt.Fprintf(os.Stdout, "✓ %s: %s, %d pages\n", s.File, s.Kind, s.Pages)
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "\n%d/%d files failed\n", failed, len(summaries))
	}
	return nil
}

func errorFile(err error) string {
	var ie *core.IngestError
	if errors.As(err, &ie) {
		return ie.Name
	}
	return ""
}
