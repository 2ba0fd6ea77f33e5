package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/houvven/pitch/internal/cliconfig"
	"github.com/houvven/pitch/pkg/log"
)

const helpDescription = `
Run a pitch engine under a lifecycle coordinator and print what it hears.

Highlights:
  - Start and stop are deduplicated and never block on the engine.
  - The engine's running state is reconciled with a bounded poll.
  - Samples that race a stop are dropped, never delivered late.
  - Configure via file, env (PITCH_*), or flags; [reconcile] reloads live.
`

var exampleUsage = strings.TrimSpace(`
  pitch run --duration 30s
  pitch run --engine sim --sim-frequency 329.63 --reconcile-attempts 8
  pitch status
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pitch:", err)
		os.Exit(1)
	}
}

// cliState is shared between the root command and its subcommands.
type cliState struct {
	cfg     cliconfig.Config
	cfgPath string
}

func newRootCommand() *cobra.Command {
	st := &cliState{cfg: cliconfig.DefaultConfig()}

	root := &cobra.Command{
		Use:           "pitch",
		Short:         "Coordinate a pitch engine's lifecycle",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&st.cfgPath, "config", "", "path to config file (default: $HOME/.pitch/config.toml)")
	pf.StringVar(&st.cfg.StateDir, "state-dir", st.cfg.StateDir, "directory for session.json (default: $HOME/.pitch)")
	pf.StringVar(&st.cfg.LogLevel, "log-level", st.cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&st.cfg.LogFormat, "log-format", st.cfg.LogFormat, "log output format (console, json)")

	root.AddCommand(newRunCommand(st), newStatusCommand(st))
	return root
}

// configFile returns the config path to use, or "" if none.
func (st *cliState) configFile() string {
	if st.cfgPath != "" {
		return st.cfgPath
	}
	return cliconfig.DefaultConfigPath()
}

// load applies the config file, then PITCH_* variables, on top of the flag
// values. Flags set on the command line always win.
func (st *cliState) load(cmd *cobra.Command) (map[string]bool, error) {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile := st.configFile(); cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&st.cfg, fc, changed); err != nil {
			return nil, err
		}
	} else if st.cfgPath != "" {
		return nil, fmt.Errorf("config file %s not found", st.cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(&st.cfg, changed); err != nil {
		return nil, err
	}
	if err := st.cfg.Validate(); err != nil {
		return nil, err
	}
	return changed, nil
}

func (st *cliState) logger() *log.ZerologAdapter {
	return newLogger(os.Stderr, st.cfg.LogFormat, st.cfg.LogLevel)
}

// newLogger writes console output unless format asks for JSON lines.
func newLogger(w io.Writer, format, level string) *log.ZerologAdapter {
	if format != cliconfig.LogFormatJSON {
		return log.NewZerologAdapter(w, level)
	}
	zl := zerolog.New(w).Level(log.ParseLevel(level)).With().Timestamp().Logger()
	return log.NewZerologAdapterWithLogger(zl)
}
