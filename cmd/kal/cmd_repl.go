package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/dhamidi/kaleido/format"
	"github.com/dhamidi/kaleido/kal/parser"
)

const (
	promptMain   = "kal> "
	promptCont   = "...> "
	historyFile  = ".kal_history"
	replFilename = "<repl>"
)

func newREPLCmd() *cobra.Command {
	var historyPath string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Parse Kal interactively",
		Long: `Read Kal source line by line and print every completed item in
parenthesized form. Input that ends inside an item is kept and the prompt
changes until the item is complete.

Commands: :ops lists the operator table, :reset drops unfinished input,
:help shows this list, :quit leaves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if historyPath == "" {
				if home, err := os.UserHomeDir(); err == nil {
					historyPath = filepath.Join(home, historyFile)
				}
			}

			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)

			if historyPath != "" {
				if f, err := os.Open(historyPath); err == nil {
					ln.ReadHistory(f)
					f.Close()
				}
			}

			err := newREPL(ln, cmd.OutOrStdout()).run()

			if historyPath != "" {
				if f, err := os.Create(historyPath); err == nil {
					ln.WriteHistory(f)
					f.Close()
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&historyPath, "history", "", "history file (default ~/"+historyFile+")")

	return cmd
}

// prompter is the part of *liner.State the REPL needs.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type repl struct {
	in      prompter
	out     io.Writer
	session *parser.Session

	// carry holds raw text that ended inside a block comment.
	carry string

	errColor  *color.Color
	itemColor *color.Color
	infoColor *color.Color
}

func newREPL(in prompter, out io.Writer) *repl {
	return &repl{
		in:        in,
		out:       out,
		session:   parser.NewSession(),
		errColor:  color.New(color.FgRed),
		itemColor: color.New(color.FgCyan),
		infoColor: color.New(color.FgGreen),
	}
}

func (r *repl) waiting() bool {
	return r.carry != "" || !r.session.Complete()
}

func (r *repl) run() error {
	for {
		prompt := promptMain
		if r.waiting() {
			prompt = promptCont
		}

		text, err := r.in.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out)
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			r.reset()
			continue
		}
		if err != nil {
			return err
		}

		if strings.TrimSpace(text) != "" {
			r.in.AppendHistory(text)
		}
		if quit, handled := r.command(strings.TrimSpace(text)); handled {
			if quit {
				return nil
			}
			continue
		}
		r.feed(text)
	}
}

// command runs a REPL command. Lines that merely start with ':' are Kal
// source, since ':' is a valid operator symbol.
func (r *repl) command(text string) (quit, handled bool) {
	switch text {
	case ":quit", ":q":
		return true, true
	case ":reset":
		r.reset()
		r.infoColor.Fprintln(r.out, "input cleared; declared operators are kept")
	case ":ops":
		ops := r.session.Operators()
		for _, sym := range ops.Symbols() {
			prec, _ := ops.Lookup(sym)
			fmt.Fprintf(r.out, "%s\t%d\n", sym, prec)
		}
	case ":help":
		fmt.Fprintln(r.out, ":ops    list operators and their precedence")
		fmt.Fprintln(r.out, ":reset  drop unfinished input")
		fmt.Fprintln(r.out, ":quit   leave")
	default:
		return false, false
	}
	return false, true
}

func (r *repl) reset() {
	r.carry = ""
	r.session.Reset()
}

func (r *repl) feed(text string) {
	src := r.carry + text + "\n"

	tokens, err := parser.Tokenize([]byte(src), replFilename)
	if parser.IsIncomplete(err) {
		r.carry = src
		return
	}
	r.carry = ""

	items, err := r.session.Feed(tokens)
	if err != nil {
		r.errColor.Fprintf(r.out, "error: %s\n", err)
		return
	}

	if len(items) == 0 {
		return
	}
	var buf bytes.Buffer
	if err := format.NewKalEncoder(&buf).Encode(items); err != nil {
		r.errColor.Fprintf(r.out, "error: %s\n", err)
		return
	}
	r.itemColor.Fprint(r.out, buf.String())
}
