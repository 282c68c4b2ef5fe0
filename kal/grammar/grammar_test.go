package grammar

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/dhamidi/kaleido/kal/parser"
)

func TestLoad(t *testing.T) {
	g, err := Load()
	if err != nil {
		for _, e := range Errors(err) {
			t.Error(e)
		}
		t.FailNow()
	}

	for _, name := range []string{Start, "Prototype", "Loop", "Let", "identifier", "operator"} {
		if _, ok := g[name]; !ok {
			t.Errorf("production %s missing", name)
		}
	}
}

func TestKeywordsAppearInGrammar(t *testing.T) {
	src := Source()
	for _, kw := range parser.Keywords() {
		if !bytes.Contains(src, []byte(strconv.Quote(kw))) {
			t.Errorf("keyword %q not used by the grammar", kw)
		}
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		start   string
		wantErr string
	}{
		{
			name:  "syntax only",
			src:   `A = "a" B .`,
			start: "",
		},
		{
			name:  "verified",
			src:   `A = "a" { B } . B = "b" .`,
			start: "A",
		},
		{
			name:    "undefined production",
			src:     `A = "a" B .`,
			start:   "A",
			wantErr: "B",
		},
		{
			name:    "unreachable production",
			src:     `A = "a" . C = "c" .`,
			start:   "A",
			wantErr: "unreachable",
		},
		{
			name:    "missing start",
			src:     `A = "a" .`,
			start:   "Program",
			wantErr: "Program",
		},
		{
			name:    "syntax error",
			src:     `A = "a"`,
			start:   "",
			wantErr: "expected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Check("test.ebnf", strings.NewReader(tt.src), tt.start)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Check: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Check succeeded, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Check error = %q, want it to contain %q", err, tt.wantErr)
			}
			if len(Errors(err)) == 0 {
				t.Error("Errors returned nothing for a failed check")
			}
		})
	}
}

func TestProductions(t *testing.T) {
	g, err := Check("test.ebnf", strings.NewReader(`b = "b" . A = b .`), "A")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	got := Productions(g)
	if len(got) != 2 || got[0] != "A" || got[1] != "b" {
		t.Errorf("Productions = %v, want [A b]", got)
	}
}
