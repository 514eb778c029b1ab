package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dqcheck/dqcheck/internal/adapters/outbound/config"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/dataset"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/docs"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/gitinfo"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/history"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/report"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/scanner"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/suite"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/tui"
	"github.com/dqcheck/dqcheck/internal/application"
)

func newValidateService(log logrus.FieldLogger) *application.ValidateService {
	return application.NewValidateService(application.ValidatePorts{
		Datasets: dataset.New(),
		Suites:   suite.New(),
		Reports:  report.NewJSONWriter(),
		Docs:     docs.NewHTMLBuilder(),
		Opener:   docs.NewBrowserOpener(),
		Config:   config.New(),
		History:  history.New(),
		Scanner:  scanner.New(),
		Git:      gitinfo.New(),
	}, log, application.WithVersion(version))
}

// validateFlags are shared by the validate subcommand and the root command.
type validateFlags struct {
	suitePath    string
	outPath      string
	html         bool
	noOpen       bool
	resultFormat string
	jsonOutput   bool
	projectPath  string
}

func (f *validateFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.suitePath, "suite", "s", "", "Path to the expectations suite (JSON)")
	cmd.Flags().StringVarP(&f.outPath, "out", "o", "", "Report path (default <reports_dir>/<dataset>_<timestamp>.json)")
	cmd.Flags().BoolVar(&f.html, "html", false, "Build the HTML data docs and open them")
	cmd.Flags().BoolVar(&f.noOpen, "no-open", false, "Build the HTML data docs without opening a browser")
	cmd.Flags().StringVar(&f.resultFormat, "result-format", "", "BOOLEAN_ONLY, BASIC, SUMMARY or COMPLETE")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Print the validation result as JSON")
	cmd.Flags().StringVar(&f.projectPath, "project", ".", "Project directory holding .dqcheck.yaml and run history")
}

// run validates dataPath, or every dataset below it when it is a directory.
func (f *validateFlags) run(cmd *cobra.Command, opts *rootOptions, dataPath string) error {
	req := application.RunRequest{
		DatasetPath:  dataPath,
		SuitePath:    f.suitePath,
		OutPath:      f.outPath,
		HTML:         f.html,
		NoOpen:       f.noOpen,
		ResultFormat: f.resultFormat,
		ProjectPath:  f.projectPath,
	}
	svc := newValidateService(opts.log)

	if info, err := os.Stat(dataPath); err == nil && info.IsDir() {
		if f.outPath != "" {
			return &ExitError{Code: ExitUsage, Err: errors.New("--out cannot be used when validating a directory")}
		}
		return runBatch(cmd, svc, dataPath, req, f.jsonOutput)
	}
	return runSingle(cmd, svc, req, f.jsonOutput)
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	flags := &validateFlags{}

	cmd := &cobra.Command{
		Use:   "validate <data>",
		Short: "Validate a dataset against an expectations suite",
		Long: "Validate a CSV or xlsx dataset against a JSON suite. Exits 0 when every expectation passes, " +
			"1 when any fails and 2 when the run cannot complete. A directory validates every dataset below it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.run(cmd, opts, args[0])
		},
	}
	flags.bind(cmd)
	_ = cmd.MarkFlagRequired("suite")

	return cmd
}

func runSingle(cmd *cobra.Command, svc *application.ValidateService, req application.RunRequest, jsonOutput bool) error {
	out := cmd.OutOrStdout()
	if !jsonOutput {
		fmt.Fprint(out, tui.RenderRunHeader(req.DatasetPath))
	}

	outcome, err := svc.Validate(cmd.Context(), req)
	if err != nil {
		if outcome == nil {
			fmt.Fprint(out, tui.RenderError(userMessage(err, req.DatasetPath, req.SuitePath)))
			return &ExitError{Code: ExitUsage, Err: err, Reported: true}
		}
		// The report exists; only the data docs failed.
		fmt.Fprint(cmd.ErrOrStderr(), tui.RenderWarning(err.Error()))
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcome.Result); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, tui.RenderSummary(outcome.Result))
		fmt.Fprint(out, tui.RenderReportPaths(outcome.ReportPath, outcome.DocsPath))
	}

	if !outcome.Result.Success {
		return &ExitError{Code: ExitFailed, Err: errors.New("data quality checks failed"), Reported: true}
	}
	return nil
}

type batchJSON struct {
	Dataset    string `json:"dataset"`
	Success    bool   `json:"success"`
	ReportPath string `json:"report_path,omitempty"`
	DocsPath   string `json:"docs_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, svc *application.ValidateService, dir string, req application.RunRequest, jsonOutput bool) error {
	out := cmd.OutOrStdout()
	items, err := svc.ValidateAll(cmd.Context(), dir, req)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, application.ErrNoDatasets) {
			msg = "No dataset files found in " + dir
		}
		fmt.Fprint(out, tui.RenderError(msg))
		return &ExitError{Code: ExitUsage, Err: err, Reported: true}
	}

	code := ExitPassed
	lines := make([]tui.BatchLine, 0, len(items))
	rows := make([]batchJSON, 0, len(items))
	for _, it := range items {
		name, relErr := filepath.Rel(dir, it.DatasetPath)
		if relErr != nil {
			name = it.DatasetPath
		}
		line := tui.BatchLine{Dataset: name, Err: it.Err}
		row := batchJSON{Dataset: it.DatasetPath}
		if it.Outcome != nil {
			line.Result = it.Outcome.Result
			row.Success = it.Outcome.Result.Success
			row.ReportPath = it.Outcome.ReportPath
			row.DocsPath = it.Outcome.DocsPath
		}
		switch {
		case it.Err != nil && it.Outcome == nil:
			line.Err = errors.New(userMessage(it.Err, it.DatasetPath, req.SuitePath))
			row.Error = line.Err.Error()
			code = ExitUsage
		case it.Err != nil:
			// Only the data docs failed; the report was written.
			line.Err = nil
			row.Error = it.Err.Error()
			fallthrough
		default:
			if !it.Outcome.Result.Success && code == ExitPassed {
				code = ExitFailed
			}
		}
		lines = append(lines, line)
		rows = append(rows, row)
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, tui.RenderBatch(lines))
		fmt.Fprint(out, tui.RenderVerdict(code == ExitPassed))
	}

	if code != ExitPassed {
		return &ExitError{Code: code, Err: errors.New("data quality checks failed"), Reported: true}
	}
	return nil
}
