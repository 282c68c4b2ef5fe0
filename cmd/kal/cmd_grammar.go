package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/kaleido/kal/grammar"
	"github.com/dhamidi/kaleido/kal/parser"
)

func newGrammarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Print the Kal reference grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(grammar.Source())
			return err
		},
	}

	cmd.AddCommand(newGrammarCheckCmd())
	cmd.AddCommand(newGrammarRecognizeCmd())

	return cmd
}

func newGrammarCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Parse and verify an EBNF grammar file",
		Long: `Parse and verify an EBNF grammar. Without a file the built-in Kal
grammar is checked from its start production.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				g, err := grammar.Load()
				if err != nil {
					printErrors(out, err)
					return err
				}
				fmt.Fprintf(out, "kal.ebnf: %d productions, verified from %s\n", len(g), grammar.Start)
				return nil
			}

			filename := args[0]
			f, err := os.Open(filename)
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()

			if _, err := grammar.Check(filename, f, startProduction); err != nil {
				printErrors(out, err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (if empty, only checks syntax)")

	return cmd
}

func newGrammarRecognizeCmd() *cobra.Command {
	var showRules bool

	cmd := &cobra.Command{
		Use:   "recognize [file]",
		Short: "Check Kal source against the reference grammar",
		Long: `Recognize Kal source with an Earley parser built from the reference
grammar. Unlike parse, operators need not be declared and precedence is
ignored, so this only checks the shape of the program.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := grammar.NewKalRecognizer()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if showRules {
				for _, line := range r.Rules() {
					fmt.Fprintln(out, line)
				}
				return nil
			}

			source, filename, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			tokens, err := parser.Tokenize(source, filename)
			if err != nil {
				return err
			}
			if err := r.Recognize(tokens); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d tokens derived from %s\n", filename, len(tokens), grammar.Start)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showRules, "rules", false, "print the flattened grammar rules instead")

	return cmd
}

func printErrors(w io.Writer, err error) {
	for _, e := range grammar.Errors(err) {
		fmt.Fprintln(w, e)
	}
}
