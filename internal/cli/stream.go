package cli

import (
	"bufio"
	"context"
	"io"
	"time"

	"postured/internal/config"
	"postured/internal/stream"
)

// runStream is the root command: one subscriber writing events to stdout
// until ctx is cancelled.
func runStream(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	lg := newLogger(*cfg, stderr)
	out := bufio.NewWriter(stdout)
	enc, err := stream.NewEncoder(out, cfg.Format)
	if err != nil {
		return err
	}
	// Setup failures still reach the consumer as a single error event.
	setupFailed := func(err error) error {
		lg.Error().Err(err).Msg("startup failed")
		_ = enc.Encode(stream.SetupErrorEvent(err, time.Now()))
		return exitCodeError{code: stream.ExitError}
	}

	mon, err := buildMonitor(*cfg, &lg)
	if err != nil {
		return setupFailed(err)
	}
	defer func() { _ = mon.Close() }()

	fan, err := buildSinks(ctx, *cfg, &lg)
	if err != nil {
		return setupFailed(err)
	}
	run := &stream.Runner{
		Monitor: mon,
		Encoder: enc,
		Backoff: cfg.Interval(),
		Logger:  &lg,
	}
	if fan != nil {
		run.Sink = fan
		defer func() {
			if err := fan.Close(); err != nil {
				lg.Warn().Err(err).Msg("closing sinks")
			}
		}()
	}
	if code := run.Run(ctx); code != stream.ExitOK {
		return exitCodeError{code: code}
	}
	return nil
}
