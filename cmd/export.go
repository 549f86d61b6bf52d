// Export command.
// This is the main command that orchestrates the pipeline:
// load snapshot → fetch uploads → ingest → compose → render → write.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/fetch"
	"github.com/gaurav-prasanna/reportpipe/core/ingest"
	"github.com/gaurav-prasanna/reportpipe/core/output"
	"github.com/gaurav-prasanna/reportpipe/core/record"
	"github.com/gaurav-prasanna/reportpipe/core/render"
	"github.com/gaurav-prasanna/reportpipe/core/session"
	"github.com/spf13/cobra"
)

// Flag variables.
var (
	flagPDF       bool
	flagHTML      bool
	flagMarkdown  bool
	flagJSON      bool
	flagOutputDir string

	flagUploads = map[core.Collection]*[]string{
		core.ActivityPhotos:  new([]string),
		core.AttendanceFiles: new([]string),
		core.BrochureFiles:   new([]string),
		core.ApprovalFiles:   new([]string),
		core.FeedbackFiles:   new([]string),
	}
)

var exportCmd = &cobra.Command{
	Use:   "export <record.json>",
	Short: "Render a report snapshot to the specified output format",
	Long: `Export loads a report snapshot, ingests any extra uploads into their
collections, composes the activity report and renders it.

Uploads may be local files, directories or http(s) retrieval URLs.

Examples:
  reportpipe export report.json --pdf
  reportpipe export report.json --html --photos ./photos --output_dir ./out
  reportpipe export report.json --markdown --attendance https://files.example.com/a.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	// Output format flags (mutually exclusive).
	exportCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF")
	exportCmd.Flags().BoolVar(&flagHTML, "html", false, "Output standalone HTML")
	exportCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown")
	exportCmd.Flags().BoolVar(&flagJSON, "json", false, "Output the composition plan as JSON")

	// Upload flags, one per collection.
	exportCmd.Flags().StringSliceVar(flagUploads[core.ActivityPhotos], "photos", nil, "Activity photos to append")
	exportCmd.Flags().StringSliceVar(flagUploads[core.AttendanceFiles], "attendance", nil, "Attendance files to append")
	exportCmd.Flags().StringSliceVar(flagUploads[core.BrochureFiles], "brochure", nil, "Brochure files to append")
	exportCmd.Flags().StringSliceVar(flagUploads[core.ApprovalFiles], "approval", nil, "Approval (NFA) files to append")
	exportCmd.Flags().StringSliceVar(flagUploads[core.FeedbackFiles], "feedback", nil, "Feedback files to append")

	exportCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := selectFormat()
	if err != nil {
		return err
	}
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	rec, err := loadRecord(args[0])
	if err != nil {
		return err
	}

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	s := session.New(rec, session.Config{
		Pipeline: ingest.New(cfg.PipelineConfig(log)),
		Compose:  cfg.ComposeOptions(),
		Logger:   log,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	fetcher := fetch.New()
	var errCount int
	for _, c := range core.Collections() {
		files, errs := loadFiles(ctx, fetcher, *flagUploads[c])
		if len(files) > 0 {
			assets, ingestErrs := s.Ingest(ctx, c, files)
			for _, a := range assets {
				fmt.Fprintf(os.Stdout, "  ✓ %s → %s\n", a.Name, c)
			}
			errs = append(errs, ingestErrs...)
		}
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  ✗ Error: %v\n", e)
		}
		errCount += len(errs)
	}

	renderer, err := render.ForFormat(format)
	if err != nil {
		return err
	}
	title := s.Record().ActivityTitle
	switch r := renderer.(type) {
	case *render.PDFRenderer:
		r.Title = title
	case *render.HTMLRenderer:
		r.Title = title
	case *render.MarkdownRenderer:
		r.HTML.Title = title
	}

	data, err := s.Export(renderer)
	if err != nil {
		return err
	}
	path, err := writer.Write(title, data, renderer.Extension())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Written: %s\n", path)

	if errCount > 0 {
		fmt.Fprintf(os.Stderr, "\n%d uploads skipped\n", errCount)
	}
	return nil
}

// loadRecord reads a report snapshot from disk. "-" reads stdin.
func loadRecord(path string) (core.ReportRecord, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return core.ReportRecord{}, fmt.Errorf("reading snapshot: %w", err)
	}
	return record.Load(data)
}

// selectFormat checks that exactly one output format is chosen.
func selectFormat() (string, error) {
	var formats []string
	if flagPDF {
		formats = append(formats, "pdf")
	}
	if flagHTML {
		formats = append(formats, "html")
	}
	if flagMarkdown {
		formats = append(formats, "markdown")
	}
	if flagJSON {
		formats = append(formats, "json")
	}

	if len(formats) == 0 {
		return "", fmt.Errorf("exactly one output format is required: --pdf, --html, --markdown, or --json")
	}
	if len(formats) > 1 {
		return "", fmt.Errorf("only one output format allowed per run (got %d)", len(formats))
	}
	return formats[0], nil
}
