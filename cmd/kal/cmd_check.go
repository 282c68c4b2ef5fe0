package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dhamidi/kaleido/kal/codebase"
)

func newCheckCmd() *cobra.Command {
	var watch bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "check [dir|file]",
		Short: "Report syntax errors in .kal files",
		Long: `Parse every .kal file below a directory, or a single file, and print
one line per problem. Exits with an error when problems were found.

With --watch the directory is polled and changed files are reported
again until interrupted.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			info, err := os.Stat(target)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !info.IsDir() {
				cb := codebase.New(filepath.Dir(target))
				if err := cb.ScanFile(target); err != nil {
					return err
				}
				return summarize(out, reportDiagnostics(out, cb, []string{target}))
			}

			cb := codebase.New(target)
			if err := cb.ScanAll(); err != nil {
				return err
			}
			problems := reportDiagnostics(out, cb, cb.Paths())
			if !watch {
				return summarize(out, problems)
			}

			w := codebase.NewFileWatcher(cb)
			w.SetInterval(interval)
			// the first poll only records modification times
			first := true
			w.OnChange(func(paths []string) {
				if first {
					first = false
					return
				}
				reportDiagnostics(out, cb, paths)
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			w.Start()
			defer w.Stop()
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep polling for changes")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "polling interval for --watch")

	return cmd
}

// reportDiagnostics prints the diagnostics of paths and returns how many
// there were. Paths no longer in the codebase are reported as removed.
func reportDiagnostics(w io.Writer, cb *codebase.Codebase, paths []string) int {
	errLabel := color.New(color.FgRed, color.Bold).SprintFunc()
	okLabel := color.New(color.FgGreen).SprintFunc()

	problems := 0
	for _, path := range paths {
		f := cb.GetFile(path)
		if f == nil {
			fmt.Fprintf(w, "%s: removed\n", path)
			continue
		}
		if len(f.Diagnostics) == 0 {
			fmt.Fprintf(w, "%s: %s (%d items)\n", path, okLabel("ok"), len(f.Items))
			continue
		}
		for _, d := range f.Diagnostics {
			fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", path, d.Start.Line, d.Start.Column, errLabel(d.Severity), d.Message)
			problems++
		}
	}
	return problems
}

func summarize(w io.Writer, problems int) error {
	if problems == 0 {
		return nil
	}
	return fmt.Errorf("%d problem(s) found", problems)
}
