package main

import (
	"fmt"

	"github.com/dhamidi/kaleido/kal/parser"
	"github.com/spf13/cobra"
)

func newTokensCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the tokens of a .kal file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			l := parser.NewLexer(source, filename)
			for {
				tok := l.NextToken()
				switch tok.Kind {
				case parser.TokenEOF:
					return nil
				case parser.TokenError:
					return fmt.Errorf("%s: unterminated block comment", tok.Span.Start)
				case parser.TokenWhitespace, parser.TokenComment, parser.TokenLineComment:
					if !all {
						continue
					}
				}
				fmt.Fprintf(out, "%d:%d\t%s\t%q\n", tok.Span.Start.Line, tok.Span.Start.Column, tok.Kind, tok.Literal)
			}
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include whitespace and comments")

	return cmd
}
