package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dqcheck/dqcheck/internal/domain"
	"github.com/dqcheck/dqcheck/internal/domain/engine"
)

// ValidatePorts are the outbound dependencies of ValidateService.
type ValidatePorts struct {
	Datasets domain.DatasetLoader
	Suites   domain.SuiteLoader
	Reports  domain.ReportWriter
	Docs     domain.DocsBuilder
	Opener   domain.DocsOpener
	Config   domain.ConfigLoader
	History  domain.RunHistory
	Scanner  domain.DatasetScanner
	Git      domain.GitInfo
}

// ValidateService orchestrates one validation run:
// load dataset → load suite → ephemeral engine context → validate →
// write report → record history → build and open data docs.
type ValidateService struct {
	ports   ValidatePorts
	log     logrus.FieldLogger
	now     func() time.Time
	newID   func() string
	version string
}

// Option customises a ValidateService.
type Option func(*ValidateService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *ValidateService) { s.now = now }
}

// WithRunID replaces the uuid run id generator.
func WithRunID(newID func() string) Option {
	return func(s *ValidateService) { s.newID = newID }
}

// WithVersion records the tool version in report metadata.
func WithVersion(v string) Option {
	return func(s *ValidateService) { s.version = v }
}

func NewValidateService(ports ValidatePorts, log logrus.FieldLogger, opts ...Option) *ValidateService {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	s := &ValidateService{
		ports: ports,
		log:   log,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RunRequest describes a single validation run.
type RunRequest struct {
	DatasetPath string
	SuitePath   string
	// OutPath overrides the timestamped report path.
	OutPath string
	// HTML builds data docs next to the report.
	HTML bool
	// NoOpen suppresses opening the data docs in a browser.
	NoOpen bool
	// ResultFormat overrides the configured result format when set.
	ResultFormat string
	// ProjectPath is where .dqcheck.yaml, the run history and a relative
	// reports dir live.
	ProjectPath string
}

// RunOutcome is what a finished run produced.
type RunOutcome struct {
	Result     *domain.ValidationResult
	ReportPath string
	DocsPath   string
	Opened     bool
}

// Validate performs one run. A failed validation is not an error: check
// Result.Success. Errors mean the run could not complete.
func (s *ValidateService) Validate(ctx context.Context, req RunRequest) (*RunOutcome, error) {
	projectPath := req.ProjectPath
	if projectPath == "" {
		projectPath = "."
	}

	cfg, err := s.ports.Config.Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return s.run(ctx, req, projectPath, cfg)
}

func (s *ValidateService) run(ctx context.Context, req RunRequest, projectPath string, cfg domain.ProjectConfig) (*RunOutcome, error) {
	rfName := cfg.ResultFormat
	if req.ResultFormat != "" {
		rfName = req.ResultFormat
	}
	rf, err := domain.ParseResultFormat(rfName)
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{"dataset": req.DatasetPath, "suite": req.SuitePath})

	log.Debug("loading dataset")
	ds, err := s.ports.Datasets.Load(req.DatasetPath, domain.LoadOptions{
		Delimiter:  cfg.EffectiveDelimiter(),
		NullValues: cfg.EffectiveNullValues(),
		Sheet:      cfg.Sheet,
	})
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	log.WithFields(logrus.Fields{"rows": ds.RowCount(), "columns": len(ds.Columns)}).Debug("dataset loaded")

	suite, err := s.ports.Suites.Load(req.SuitePath)
	if err != nil {
		return nil, fmt.Errorf("loading suite: %w", err)
	}
	log.WithField("expectations", suite.Len()).Debug("suite loaded")
	for _, e := range suite.Expectations {
		if !engine.Supports(e.Type) {
			log.WithField("type", e.Type).Warn("suite uses an unsupported expectation type")
		}
	}

	ectx := engine.NewContext(engine.Options{
		ResultFormat:    rf,
		CatchExceptions: cfg.CatchExceptionsEnabled(),
	})
	if err := ectx.AddDataset(ds); err != nil {
		return nil, err
	}
	if err := ectx.AddSuite(suite); err != nil {
		return nil, err
	}

	started := s.now().UTC()
	result, err := ectx.Validate(ctx, ds.Name, suite.Name)
	if err != nil {
		return nil, fmt.Errorf("validating: %w", err)
	}
	result.Meta = domain.RunMeta{
		RunID:       s.newID(),
		RunTime:     started,
		DatasetName: ds.Name,
		DatasetPath: req.DatasetPath,
		RowCount:    ds.RowCount(),
		SuitePath:   req.SuitePath,
		CommitHash:  s.commitHash(projectPath),
		ToolVersion: s.version,
	}
	log = log.WithField("run_id", result.Meta.RunID)
	log.WithFields(logrus.Fields{
		"success":      result.Success,
		"evaluated":    result.Statistics.EvaluatedExpectations,
		"unsuccessful": result.Statistics.UnsuccessfulExpectations,
	}).Info("validation finished")

	out := &RunOutcome{Result: result, ReportPath: req.OutPath}
	if out.ReportPath != "" {
		if err := s.ports.Reports.Write(out.ReportPath, result); err != nil {
			return nil, fmt.Errorf("writing report: %w", err)
		}
	} else {
		// Same-second runs of same-named datasets get a -N suffix.
		def := domain.DefaultReportPath(cfg.ReportsDirIn(projectPath), ds.Name, started)
		if out.ReportPath, err = s.ports.Reports.Create(def, result); err != nil {
			return nil, fmt.Errorf("writing report: %w", err)
		}
	}
	log = log.WithField("report", out.ReportPath)
	log.Debug("report written")

	if cfg.HistoryEnabled() && s.ports.History != nil {
		if err := s.ports.History.Save(projectPath, domain.NewRunEntry(result, out.ReportPath)); err != nil {
			log.WithError(err).Warn("could not record run history")
		}
	}

	if req.HTML || cfg.HTML {
		out.DocsPath = domain.DocsPathFor(out.ReportPath)
		if err := s.ports.Docs.Build(out.DocsPath, result); err != nil {
			return out, fmt.Errorf("building data docs: %w", err)
		}
		log.WithField("docs", out.DocsPath).Debug("data docs built")

		if !req.NoOpen && cfg.ShouldOpenBrowser() && s.ports.Opener != nil {
			if err := s.ports.Opener.Open(out.DocsPath); err != nil {
				log.WithError(err).Warn("could not open data docs")
			} else {
				out.Opened = true
			}
		}
	}

	return out, nil
}

func (s *ValidateService) commitHash(path string) string {
	if s.ports.Git == nil {
		return ""
	}
	hash, err := s.ports.Git.CommitHash(path)
	if err != nil {
		s.log.WithError(err).Debug("no git commit for report metadata")
		return ""
	}
	return hash
}

// BatchItem is the outcome for one dataset of a batch run.
type BatchItem struct {
	DatasetPath string
	Outcome     *RunOutcome
	Err         error
}

// ErrNoDatasets is returned when a batch directory holds no dataset files.
var ErrNoDatasets = errors.New("no dataset files found")

// ValidateAll validates every dataset found below dir against the same
// suite. A dataset that cannot be validated is reported on its item and
// does not stop the batch. Browsers are never opened in batch mode.
func (s *ValidateService) ValidateAll(ctx context.Context, dir string, req RunRequest) ([]BatchItem, error) {
	projectPath := req.ProjectPath
	if projectPath == "" {
		projectPath = "."
	}
	cfg, err := s.ports.Config.Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	files, err := s.ports.Scanner.Scan(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDatasets, dir)
	}
	s.log.WithFields(logrus.Fields{"dir": dir, "datasets": len(files)}).Info("batch validation")

	items := make([]BatchItem, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return items, err
		}
		r := req
		r.DatasetPath = f
		r.OutPath = ""
		r.NoOpen = true
		out, err := s.run(ctx, r, projectPath, cfg)
		if err != nil {
			s.log.WithError(err).WithField("dataset", f).Warn("dataset could not be validated")
		}
		items = append(items, BatchItem{DatasetPath: f, Outcome: out, Err: err})
	}
	return items, nil
}
