// Command securefoxd is the background daemon for the securefox CLI. It
// owns the single in-memory decrypted vault, serves the local HTTP API
// of spec.md §6 on 127.0.0.1, and runs the auto-sync loop of §4.6
// alongside it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/securefoxd/securefox/gitsync"
	"github.com/securefoxd/securefox/httpapi"
	"github.com/securefoxd/securefox/syncdaemon"
	"github.com/securefoxd/securefox/vaultconfig"
	"github.com/securefoxd/securefox/vaultmodel"
	"github.com/securefoxd/securefox/vaultsession"
	"github.com/securefoxd/securefox/vaultstorage"
)

// Version is overwritten at build time via -ldflags.
var Version = "0.0.0"

const (
	defaultAddr          = "127.0.0.1:8787"
	defaultUnlockTimeout = 15 * time.Minute
)

func main() {
	addr := flag.String("addr", defaultAddr, "address to listen on")
	unlockTimeout := flag.Duration("unlock-timeout", defaultUnlockTimeout, "session idle timeout")
	help := flag.Bool("help", false, "show usage information")
	version := flag.Bool("version", false, "show version")

	flag.Usage = func() {
		_, _ = fmt.Fprint(flag.CommandLine.Output(), `securefoxd - background daemon for the securefox CLI.

Usage: securefoxd [options]

Serves the local HTTP API for unlocking, reading, and editing the
vault at $SECUREFOX_VAULT (or ~/.securefox), and drives auto-sync per
the sync configuration in $SECUREFOX_CONFIG (or config in the vault
directory).

Options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	if *version {
		fmt.Printf("%s\n", Version)
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(*addr, *unlockTimeout, logger); err != nil {
		logger.Error("securefoxd exited", "error", err)
		os.Exit(1)
	}
}

func run(addr string, unlockTimeout time.Duration, logger *slog.Logger) error {
	storage, err := vaultstorage.New()
	if err != nil {
		return fmt.Errorf("resolve vault storage: %w", err)
	}

	cfg, err := vaultconfig.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	manager := vaultsession.New(storage, unlockTimeout, logger)

	var engine *gitsync.Engine

	if cfg.RemoteURL != nil {
		engine, err = gitsync.Open(storage.Dir())
		if err != nil {
			logger.Warn("auto-sync disabled: open git repository failed", "error", err)
			engine = nil
		} else {
			manager.SetSyncEngine(engine, cfg.SyncConfig.Enabled && cfg.SyncConfig.Mode.IsAuto())
		}
	}

	server := httpapi.New(manager, engine, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	daemon := syncdaemon.New(engine, func() (*vaultmodel.SyncConfig, bool) {
		c, err := vaultconfig.Load()
		if err != nil {
			return nil, false
		}

		return &c.SyncConfig, true
	}, logger)

	go daemon.Run(ctx)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: server,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("securefoxd listening", "addr", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	return httpServer.Shutdown(shutdownCtx)
}
