package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dhamidi/kaleido/ui"
	"github.com/spf13/cobra"
)

func newUICmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the parser playground",
		Long: `Serve a web page where Kal source can be typed and parsed. The page
shows the parenthesized program and its syntax tree as JSON.

POST /api/parse accepts {"source": "..."} (or a form field named source)
and answers with the items, the formatted program, and either an error
with its line and column or the number of tokens left unfinished.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := ui.NewServer()
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			displayAddr := addr
			if strings.HasPrefix(addr, ":") {
				displayAddr = "localhost" + addr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Starting server at http://%s\n", displayAddr)
			return http.ListenAndServe(addr, server)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "host:port for the playground (a leading ':' listens on every interface)")

	return cmd
}
