// Package syncdaemon implements the auto-sync daemon (C8) of spec.md
// §4.6: a long-lived task that re-reads SyncConfig on every cycle and,
// in Auto mode, fetches and pulls on divergence at the configured
// interval. Pushes on local mutation are driven synchronously by
// vaultsession.Manager, never here, per the spec. The ticker/select
// cancellation idiom mirrors the teacher's vaultdaemon/server.go
// session timeout loop, adapted from a per-session timer to a process
// daemon driven by context.Context.
package syncdaemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/securefoxd/securefox/gitsync"
	"github.com/securefoxd/securefox/vaultmodel"
)

// idlePoll is how often the daemon re-checks SyncConfig when sync is
// disabled or Manual, per spec.md §4.6.
const idlePoll = 30 * time.Second

// ConfigSource returns the current sync configuration, typically
// backed by vaultconfig.Config or the unlocked vault's SyncConfig.
type ConfigSource func() (*vaultmodel.SyncConfig, bool)

// Daemon polls ConfigSource and drives gitsync.Engine accordingly.
type Daemon struct {
	engine *gitsync.Engine
	config ConfigSource
	logger *slog.Logger
}

// New constructs a Daemon. engine may be nil until a Git remote is
// configured; cycles are then no-ops.
func New(engine *gitsync.Engine, config ConfigSource, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}

	return &Daemon{engine: engine, config: config, logger: logger}
}

// Run blocks, performing sync cycles until ctx is cancelled. A
// partially-executing fetch may complete before shutdown is observed,
// per spec.md §4.6.
func (d *Daemon) Run(ctx context.Context) {
	for {
		wait := d.cycle()

		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// cycle performs at most one fetch+pull and returns how long to wait
// before the next cycle.
func (d *Daemon) cycle() time.Duration {
	cfg, ok := d.config()
	if !ok || !cfg.Enabled || !cfg.Mode.IsAuto() {
		return idlePoll
	}

	interval, ok := cfg.Mode.Interval()
	if !ok {
		return idlePoll
	}

	if d.engine == nil {
		return interval
	}

	behind, err := d.engine.HasRemoteUpdates()
	if err != nil {
		d.logger.Warn("auto-sync: fetch failed", "error", err)
		return interval
	}

	if behind {
		if err := d.engine.Pull(); err != nil {
			d.logger.Warn("auto-sync: pull failed", "error", err)
		} else {
			d.logger.Info("auto-sync: pulled remote changes")
		}
	}

	return interval
}
