package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhamidi/kaleido/format"
	"github.com/dhamidi/kaleido/kal/codebase"
	"github.com/spf13/cobra"
)

func newFmtCmd() *cobra.Command {
	var fmtOverwrite bool

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Print a .kal file in canonical form",
		Long: `Print a Kal program with one item per line and every compound
expression parenthesized. Comments are not preserved.

If no file is provided, reads Kal source from stdin.
Use -w to overwrite the file in place (requires a file argument).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fmtOverwrite && (len(args) == 0 || args[0] == "-") {
				return fmt.Errorf("-w requires a file argument")
			}
			if len(args) == 1 && args[0] != "-" {
				if ext := filepath.Ext(args[0]); ext != codebase.Ext {
					return fmt.Errorf("expected %s file, got %s", codebase.Ext, ext)
				}
			}

			source, filename, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			items, err := parseProgram(source, filename)
			if err != nil {
				return err
			}

			var out bytes.Buffer
			if err := format.NewKalEncoder(&out).Encode(items); err != nil {
				return fmt.Errorf("format: %w", err)
			}

			if fmtOverwrite {
				return os.WriteFile(filename, out.Bytes(), 0644)
			}
			_, err = cmd.OutOrStdout().Write(out.Bytes())
			return err
		},
	}

	cmd.Flags().BoolVarP(&fmtOverwrite, "write", "w", false, "write result to the source file instead of stdout")

	return cmd
}
