// Package cli carries the construction helpers shared by the tether
// command-line entry points.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/probelab/tether"
	"github.com/probelab/tether/internal/config"
	journalfile "github.com/probelab/tether/internal/journal/file"
	journalredis "github.com/probelab/tether/internal/journal/redis"
	"github.com/probelab/tether/internal/logging"
	"github.com/probelab/tether/internal/telemetry"
	"github.com/probelab/tether/pkg/ports"
)

// CreateLogger builds the process logger for the given verbosity.
func CreateLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.New(slog.LevelInfo)
}

// BuildJournal constructs the configured journal store. The returned
// closer is non-nil for backends that hold connections.
func BuildJournal(cfg config.JournalConfig) (ports.JournalStore, io.Closer, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil, nil
	case "file":
		var opts config.FileJournalOptions
		if err := config.DecodeOptions(cfg.Options, &opts); err != nil {
			return nil, nil, fmt.Errorf("file journal options: %w", err)
		}
		return journalfile.New(opts.Dir), nil, nil
	case "redis":
		var opts config.RedisJournalOptions
		if err := config.DecodeOptions(cfg.Options, &opts); err != nil {
			return nil, nil, fmt.Errorf("redis journal options: %w", err)
		}
		store := journalredis.New(opts.Addr, opts.Password, opts.DB,
			journalredis.WithTTL(opts.TTL))
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown journal backend %q", cfg.Backend)
	}
}

// BuildSession assembles a session from configuration. Metrics may be
// nil for short-lived invocations that never serve /metrics.
func BuildSession(cfg *config.Config, logger *slog.Logger, journal ports.JournalStore, metrics *telemetry.Metrics, extra ...tether.Option) (*tether.Session, error) {
	opts := []tether.Option{
		tether.WithLogger(logger),
		tether.WithQueueCapacity(cfg.Session.QueueCapacity),
		tether.WithPollTimeout(cfg.Session.PollTimeout),
		tether.WithDrainTimeout(cfg.Session.DrainTimeout),
	}
	if journal != nil {
		opts = append(opts, tether.WithJournal(journal))
	}
	if metrics != nil {
		opts = append(opts, tether.WithMetrics(metrics))
	}
	opts = append(opts, extra...)
	return tether.New(cfg.Session.ID, opts...)
}

// NewMetrics registers the process collectors on the default registry.
func NewMetrics() *telemetry.Metrics {
	return telemetry.New(prometheus.DefaultRegisterer)
}

// RunStartup executes the configured startup commands in order,
// stopping at the first failure.
func RunStartup(ctx context.Context, session *tether.Session, lines []string) error {
	for _, line := range lines {
		out, err := session.Execute(ctx, line)
		if err != nil {
			return fmt.Errorf("startup command %q: %w", line, err)
		}
		if out != "" {
			fmt.Print(out)
		}
	}
	return nil
}

// FirstError returns the first non-nil error, for teardown chains.
func FirstError(errs ...error) error {
	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}
