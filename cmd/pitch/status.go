package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/houvven/pitch/pkg/state"
)

func newStatusCommand(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the summary of the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := st.load(cmd); err != nil {
				return err
			}

			repo := state.NewFileRepository(st.cfg.StateDir)
			s, err := repo.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load session %s: %w", repo.Path(), err)
			}
			printStatus(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func printStatus(w io.Writer, s state.Session) {
	if s.IsEmpty() {
		fmt.Fprintln(w, "no session recorded")
		return
	}

	fmt.Fprintf(w, "engine:     %s\n", s.Engine)
	fmt.Fprintf(w, "started:    %s (%s)\n", s.StartedAt.Format(time.RFC3339), humanize.Time(s.StartedAt))
	fmt.Fprintf(w, "duration:   %s\n", s.Duration().Round(time.Millisecond))
	fmt.Fprintf(w, "state:      %s\n", s.FinalState)
	fmt.Fprintf(w, "sessions:   %s\n", humanize.Comma(int64(s.Sessions)))
	fmt.Fprintf(w, "delivered:  %s\n", humanize.Comma(int64(s.Delivered)))
	fmt.Fprintf(w, "dropped:    %s\n", humanize.Comma(int64(s.Dropped)))
	fmt.Fprintf(w, "last pitch: %.3f Hz\n", s.LastPitch)
	if s.MaxPitch > 0 {
		fmt.Fprintf(w, "range:      %.3f - %.3f Hz\n", s.MinPitch, s.MaxPitch)
	}
	if s.StopError != "" {
		fmt.Fprintf(w, "stop error: %s\n", s.StopError)
	}
}
