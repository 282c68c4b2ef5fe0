package main

import (
	"fmt"

	"github.com/dhamidi/kaleido/format"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a .kal file and dump the syntax tree",
		Long: `Parse a Kal program and print its top-level items.

The json format prints the syntax tree; the kal format prints the program
back with every compound expression parenthesized. Reads stdin when no
file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			items, err := parseProgram(source, filename)
			if err != nil {
				return err
			}

			encoder, err := format.New(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := encoder.Encode(items); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format (json, kal)")

	return cmd
}
