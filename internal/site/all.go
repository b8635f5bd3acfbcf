package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/gazette/internal/config"
	"git.home.luguber.info/inful/gazette/internal/logfields"
)

// GenerateAll generates every site configured in configDir. A failing site
// is logged and collected; the others still run. The returned error joins
// every per-site failure.
func GenerateAll(ctx context.Context, configDir string, opts ...Option) ([]*Report, error) {
	paths, err := config.List(configDir)
	if err != nil {
		return nil, Classify(err, "config")
	}

	probe := &Site{logger: slog.Default()}
	for _, opt := range opts {
		opt(probe)
	}
	logger := probe.logger

	var (
		reports []*Report
		errs    []error
	)
	for _, path := range paths {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		rep, err := generateOne(ctx, path, opts)
		if rep != nil {
			reports = append(reports, rep)
		}
		if err != nil {
			logger.Error("Site generation failed", logfields.Path(path), logfields.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	logger.Info("All sites processed", logfields.Count(len(paths)), slog.Int("failed", len(errs)))
	return reports, errors.Join(errs...)
}

func generateOne(ctx context.Context, path string, opts []Option) (*Report, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, Classify(err, "config")
	}
	s, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()
	return s.Generate(ctx)
}
