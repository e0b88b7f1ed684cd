package syncdaemon_test

import (
	"context"
	"testing"
	"time"

	"github.com/securefoxd/securefox/syncdaemon"
	"github.com/securefoxd/securefox/vaultmodel"
)

func TestRunStopsOnCancel(t *testing.T) {
	calls := 0

	source := func() (*vaultmodel.SyncConfig, bool) {
		calls++
		return &vaultmodel.SyncConfig{Enabled: false}, true
	}

	d := syncdaemon.New(nil, source, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	done := make(chan struct{})

	go func() {
		d.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	if calls == 0 {
		t.Fatal("expected at least one config poll before cancellation")
	}
}

func TestRunHonoursAutoInterval(t *testing.T) {
	cfg := &vaultmodel.SyncConfig{
		Enabled: true,
		Mode:    vaultmodel.SyncMode{Type: vaultmodel.SyncModeAuto, IntervalSeconds: 1},
	}

	calls := 0

	source := func() (*vaultmodel.SyncConfig, bool) {
		calls++
		return cfg, true
	}

	// engine is nil: cycle() must treat that as a no-op rather than
	// panicking, and still respect the configured interval.
	d := syncdaemon.New(nil, source, nil)

	// With a 1s interval, 1.5s leaves room for the polls at 0s and 1s
	// only; the 30s idle poll would allow just one.
	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	d.Run(ctx)

	if calls != 2 {
		t.Fatalf("expected 2 config polls in 1.5s with a 1s interval, got %d", calls)
	}
}
