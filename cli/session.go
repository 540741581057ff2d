package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/robinvdvleuten/creditnote"
	"github.com/robinvdvleuten/creditnote/mutation"
	"github.com/robinvdvleuten/creditnote/output"
	"github.com/robinvdvleuten/creditnote/policy"
	"github.com/robinvdvleuten/creditnote/reason"
	"github.com/robinvdvleuten/creditnote/store"
	"github.com/robinvdvleuten/creditnote/telemetry"
	"github.com/robinvdvleuten/creditnote/validation"
)

// session holds everything one command invocation shares: the context with
// settings and telemetry attached, the logger and the service options.
type session struct {
	ctx      context.Context
	logger   *zap.Logger
	registry *reason.Registry
	policies *policy.Config
	config   *validation.Config

	formatter Formatter
	stderr    io.Writer
	collector telemetry.Collector
	root      telemetry.Timer
	once      sync.Once
}

// open builds a session from the global flags. name labels the root
// telemetry stage. Callers must close the session.
func (g *Globals) open(stderr io.Writer, name string) (*session, error) {
	s := &session{
		ctx:      context.Background(),
		logger:   zap.NewNop(),
		registry: reason.Default(),
		policies: policy.DefaultConfig(),
		config:   validation.NewConfig(),
		stderr:   stderr,
	}

	if g.Verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		s.logger = logger
	}

	var err error
	if s.formatter, err = NewFormatter(g.Format); err != nil {
		return nil, err
	}
	if g.Config != "" {
		if s.config, err = loadFile(g.Config, validation.LoadConfig); err != nil {
			return nil, err
		}
	}
	if g.Policies != "" {
		if s.policies, err = loadFile(g.Policies, policy.LoadConfig); err != nil {
			return nil, err
		}
	}
	if g.ReasonsFile != "" {
		descriptors, err := loadFile(g.ReasonsFile, reason.LoadYAML)
		if err != nil {
			return nil, err
		}
		if s.registry, err = s.registry.With(descriptors...); err != nil {
			return nil, fmt.Errorf("invalid reason catalogue %s: %w", g.ReasonsFile, err)
		}
	}
	s.ctx = s.config.WithContext(s.ctx)

	if g.Telemetry {
		collector := telemetry.NewTimingCollector()
		s.ctx = telemetry.WithCollector(s.ctx, collector)
		s.root = collector.Start(name)
		s.ctx = telemetry.WithRootTimer(s.ctx, s.root)
		s.collector = collector
	}

	return s, nil
}

// service creates a validation service over docs.
func (s *session) service(docs store.DocumentStore) *mutation.Service {
	return creditnote.New(docs, s.policies,
		mutation.WithRegistry(s.registry),
		mutation.WithConfig(s.config),
		mutation.WithLogger(s.logger),
	)
}

// reporter prints results to stdout in the session's format.
func (s *session) reporter(stdout io.Writer) *Reporter {
	return &Reporter{Stdout: stdout, Stderr: s.stderr, Formatter: s.formatter}
}

// close reports telemetry and flushes the logger. Safe to call repeatedly.
func (s *session) close() {
	s.once.Do(func() {
		if s.collector != nil {
			s.root.End()
			_, _ = fmt.Fprintln(s.stderr)
			s.collector.Report(s.stderr, output.NewStyles(s.stderr))
		}
		_ = s.logger.Sync()
	})
}

func loadFile[T any](path string, load func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	v, err := load(f)
	if err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
