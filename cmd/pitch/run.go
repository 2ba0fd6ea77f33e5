package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/houvven/pitch/internal/cliconfig"
	"github.com/houvven/pitch/internal/configwatch"
	"github.com/houvven/pitch/pkg/coordinator"
	"github.com/houvven/pitch/pkg/engine"
	_ "github.com/houvven/pitch/pkg/engine/sim"
	"github.com/houvven/pitch/pkg/log"
	"github.com/houvven/pitch/pkg/state"
)

func newRunCommand(st *cliState) *cobra.Command {
	cfg := &st.cfg

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the engine and print pitch samples until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, err := st.load(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runSession(ctx, runParams{
				cfg:     *cfg,
				cfgFile: st.configFile(),
				changed: changed,
				out:     cmd.OutOrStdout(),
				logger:  st.logger(),
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Engine, "engine", cfg.Engine, fmt.Sprintf("engine driver (registered: %v)", engine.Drivers()))
	f.DurationVar(&cfg.Duration, "duration", cfg.Duration, "stop after this long (0 runs until interrupted)")
	f.BoolVar(&cfg.Notes, "notes", cfg.Notes, "print the nearest note next to each sample")
	f.BoolVar(&cfg.Watch, "watch", cfg.Watch, "reload [reconcile] settings when the config file changes")

	f.IntVar(&cfg.ReconcileAttempts, "reconcile-attempts", cfg.ReconcileAttempts, "IsRunning polls after an engine start")
	f.DurationVar(&cfg.ReconcileInterval, "reconcile-interval", cfg.ReconcileInterval, "delay between IsRunning polls")
	f.StringVar(&cfg.TimeoutPolicy, "timeout-policy", cfg.TimeoutPolicy, "what to do when the engine never reports running (reset, assume-running)")

	f.DurationVar(&cfg.SimStartDelay, "sim-start-delay", cfg.SimStartDelay, "simulated engine: time Start blocks")
	f.DurationVar(&cfg.SimReadyDelay, "sim-ready-delay", cfg.SimReadyDelay, "simulated engine: time until IsRunning reports true")
	f.DurationVar(&cfg.SimSampleInterval, "sim-sample-interval", cfg.SimSampleInterval, "simulated engine: time between samples")
	f.Float64Var(&cfg.SimFrequency, "sim-frequency", cfg.SimFrequency, "simulated engine: centre frequency in Hz")
	f.Float64Var(&cfg.SimVibratoCents, "sim-vibrato", cfg.SimVibratoCents, "simulated engine: vibrato depth in cents")
	f.Float64Var(&cfg.SimVibratoRate, "sim-vibrato-rate", cfg.SimVibratoRate, "simulated engine: vibrato rate in Hz")
	f.IntVar(&cfg.SimSilenceEvery, "sim-silence-every", cfg.SimSilenceEvery, "simulated engine: make every Nth sample unvoiced")
	f.BoolVar(&cfg.SimFailStart, "sim-fail-start", cfg.SimFailStart, "simulated engine: fail on start")
	for _, name := range []string{"sim-start-delay", "sim-ready-delay", "sim-fail-start"} {
		if err := f.MarkHidden(name); err != nil {
			fmt.Fprintln(os.Stderr, "failed to hide flag:", err)
		}
	}

	return cmd
}

type runParams struct {
	cfg     cliconfig.Config
	cfgFile string
	changed map[string]bool
	out     io.Writer
	logger  *log.ZerologAdapter
}

// runSession runs one coordinator session until ctx is done, the duration
// elapses or the engine fails to start, then saves the session summary.
func runSession(ctx context.Context, p runParams) (err error) {
	cfg := p.cfg
	logger := p.logger.With(log.String("engine", cfg.Engine))

	rc, err := cfg.Reconcile()
	if err != nil {
		return err
	}
	h, err := engine.Init(cfg.Engine, cfg.EngineOptions())
	if err != nil {
		return err
	}

	rec := newRecorder(p.out, cfg.Notes, logger)
	coord, err := coordinator.New(h,
		coordinator.WithLogger(logger),
		coordinator.WithEventHandler(rec),
		coordinator.WithReconcile(rc),
	)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	rec.state = coord.State
	rec.fatal = cancel

	startedAt := time.Now()
	defer func() {
		closeErr := coord.Close()
		summary := buildSummary(cfg.Engine, startedAt, rec.finish(), coord)
		if closeErr != nil {
			summary.StopError = closeErr.Error()
		}

		repo := state.NewFileRepository(cfg.StateDir)
		if serr := repo.Save(context.Background(), summary); serr != nil {
			logger.Error("failed to save session", log.Err(serr))
			closeErr = errors.Join(closeErr, serr)
		} else {
			logger.Info("session saved",
				log.String("path", repo.Path()),
				log.Uint64("delivered", summary.Delivered),
				log.Uint64("dropped", summary.Dropped),
				log.Float32("last_pitch", summary.LastPitch),
			)
		}
		err = errors.Join(err, closeErr)
	}()

	if err := coord.Start(rec); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(runCtx)

	if cfg.Duration > 0 {
		g.Go(func() error {
			t := time.NewTimer(cfg.Duration)
			defer t.Stop()
			select {
			case <-t.C:
				logger.Info("duration elapsed", log.Duration("duration", cfg.Duration))
				cancel(nil)
			case <-gctx.Done():
			}
			return nil
		})
	}

	if cfg.Watch && p.cfgFile != "" && cliconfig.FileExists(p.cfgFile) {
		w := configwatch.New(configwatch.Config{Path: p.cfgFile}, reconcileUpdater(cfg, p.changed, coord), logger)
		g.Go(func() error {
			if err := w.Run(gctx); err != nil {
				logger.Warn("config watch disabled", log.Err(err))
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		if cause := context.Cause(runCtx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
		logger.Info("stopping")
		return nil
	})

	return g.Wait()
}

// reconcileUpdater applies the [reconcile] table of a reloaded config file
// to a running coordinator. Flags given on the command line keep their
// values.
func reconcileUpdater(base cliconfig.Config, changed map[string]bool, coord *coordinator.Coordinator) configwatch.ApplyFunc {
	return func(fc cliconfig.FileConfig) error {
		cfg := base
		if err := cliconfig.ApplyReconcileSection(&cfg, fc.Reconcile, changed); err != nil {
			return err
		}
		rc, err := cfg.Reconcile()
		if err != nil {
			return err
		}
		if rc == coord.Reconcile() {
			return nil
		}
		return coord.SetReconcile(rc)
	}
}

func buildSummary(engineName string, startedAt time.Time, pitches state.Session, coord *coordinator.Coordinator) state.Session {
	stats := coord.Stats()
	return state.Session{
		Engine:     engineName,
		StartedAt:  startedAt,
		StoppedAt:  time.Now(),
		Sessions:   stats.Sessions,
		Delivered:  stats.Delivered,
		Dropped:    stats.Dropped,
		LastPitch:  stats.Last.Hz(),
		MinPitch:   pitches.MinPitch,
		MaxPitch:   pitches.MaxPitch,
		FinalState: coord.State().String(),
	}
}
