package codebase

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/kaleido/kal/parser"
)

// Ext is the file extension of Kal source files.
const Ext = ".kal"

type Codebase struct {
	mu      sync.RWMutex
	rootDir string
	files   map[string]*FileInfo
	log     commonlog.Logger
}

// FileInfo is the analysis of one source file. The file is parsed in its
// own session, so operators declared in one file are not visible in
// another.
type FileInfo struct {
	Path        string
	Content     []byte
	Items       []parser.TopLevelItem
	Leftover    []parser.Token
	Operators   *parser.OperatorTable
	ParseErr    error
	Diagnostics []Diagnostic
}

func New(rootDir string) *Codebase {
	return &Codebase{
		rootDir: rootDir,
		files:   make(map[string]*FileInfo),
		log:     commonlog.GetLogger("kal.codebase"),
	}
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

func (c *Codebase) ScanAll() error {
	return filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != c.rootDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == Ext {
			if err := c.ScanFile(path); err != nil {
				c.log.Errorf("scan %s: %s", path, err)
			}
		}
		return nil
	})
}

func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c.UpdateFile(path, content)
	return nil
}

// UpdateFile analyzes content as the new text of path. Syntax problems end
// up in the file's diagnostics, not in an error.
func (c *Codebase) UpdateFile(path string, content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.files[path] = analyze(path, content, c.log)
	c.log.Debugf("analyzed %s: %d items, %d diagnostics", path, len(c.files[path].Items), len(c.files[path].Diagnostics))
}

// analyze parses content statement by statement. A syntax error only
// discards the statement it occurs in; parsing resumes after the next ';'
// so that one mistake does not hide the rest of the file.
func analyze(path string, content []byte, log commonlog.Logger) *FileInfo {
	name := filepath.Base(path)
	info := &FileInfo{Path: path, Content: content}

	tokens, lexErr := parser.Tokenize(content, name)

	session := parser.NewSession(parser.WithLogger(log))
	for _, stmt := range splitStatements(tokens) {
		items, err := session.Feed(stmt)
		if err != nil {
			info.addError(err, stmt[0].Span)
			continue
		}
		info.Items = append(info.Items, items...)
	}
	info.Leftover = session.Pending()
	info.Operators = session.Operators()

	var lex *parser.LexError
	switch {
	case errors.As(lexErr, &lex):
		info.addDiagnostic(Diagnostic{
			Start:    lex.Pos,
			End:      endOfInput(content, name),
			Severity: SeverityError,
			Message:  lex.Msg,
		}, lexErr)
	case len(info.Leftover) > 0:
		eof := endOfInput(content, name)
		first := info.Leftover[0]
		info.addDiagnostic(Diagnostic{
			Start:    eof,
			End:      eof,
			Severity: SeverityError,
			Message:  fmt.Sprintf("unexpected end of input: unfinished item starting with %s at %s", first, first.Span.Start),
		}, parser.ErrIncomplete)
	}
	return info
}

// splitStatements cuts tokens after every ';'. The delimiter never occurs
// inside an item, so each piece holds whole items plus possibly the start
// of one that the next piece cannot complete.
func splitStatements(tokens []parser.Token) [][]parser.Token {
	var stmts [][]parser.Token
	start := 0
	for i, tok := range tokens {
		if tok.Kind == parser.TokenDelimiter {
			stmts = append(stmts, tokens[start:i+1])
			start = i + 1
		}
	}
	if start < len(tokens) {
		stmts = append(stmts, tokens[start:])
	}
	return stmts
}

func (f *FileInfo) addError(err error, fallback parser.Span) {
	span := fallback
	var syntaxErr *parser.SyntaxError
	msg := err.Error()
	if errors.As(err, &syntaxErr) {
		msg = syntaxErr.Msg
		if syntaxErr.Token != nil {
			span = syntaxErr.Token.Span
		}
	}
	f.addDiagnostic(Diagnostic{
		Start:    span.Start,
		End:      span.End,
		Severity: SeverityError,
		Message:  msg,
	}, err)
}

func (f *FileInfo) addDiagnostic(d Diagnostic, err error) {
	if f.ParseErr == nil {
		f.ParseErr = err
	}
	f.Diagnostics = append(f.Diagnostics, d)
}

func endOfInput(content []byte, file string) parser.Position {
	l := parser.NewLexer(content, file)
	for {
		if tok := l.NextToken(); tok.Kind == parser.TokenEOF {
			return tok.Span.Start
		}
	}
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Paths returns the analyzed file paths in sorted order.
func (c *Codebase) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.files))
	for path := range c.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (c *Codebase) Diagnostics(path string) []Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if f := c.files[path]; f != nil {
		return f.Diagnostics
	}
	return nil
}

// Definition is a named function, operator, or extern declared in a file.
type Definition struct {
	Path   string
	Name   string
	Extern bool
	Proto  *parser.Prototype
}

func (d Definition) Signature() string {
	keyword := "function"
	if d.Extern {
		keyword = "extern"
	}
	return keyword + " " + formatPrototype(d.Proto)
}

// Definitions lists the declarations of every file, sorted by name. Bare
// top-level expressions are not definitions.
func (c *Codebase) Definitions() []Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var defs []Definition
	for path, f := range c.files {
		for _, item := range f.Items {
			proto := item.Signature()
			if proto.IsAnonymous() {
				continue
			}
			_, extern := item.(*parser.ExternDecl)
			defs = append(defs, Definition{Path: path, Name: proto.Name, Extern: extern, Proto: proto})
		}
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Name != defs[j].Name {
			return defs[i].Name < defs[j].Name
		}
		return defs[i].Path < defs[j].Path
	})
	return defs
}

func formatPrototype(p *parser.Prototype) string {
	params := "(" + strings.Join(p.Params, ", ") + ")"
	switch p.Kind {
	case parser.KindUnaryOp:
		return "unary " + p.Operator + " " + params
	case parser.KindBinaryOp:
		return fmt.Sprintf("binary %s %d %s", p.Operator, p.Precedence, params)
	default:
		return p.Name + params
	}
}

// CompletionsFor returns keywords and callable definitions whose name
// starts with prefix. Operators are used by symbol and are not offered.
func (c *Codebase) CompletionsFor(prefix string) []CompletionItem {
	var items []CompletionItem
	for _, kw := range parser.Keywords() {
		if strings.HasPrefix(kw, prefix) {
			items = append(items, CompletionItem{
				Label:      kw,
				Kind:       CompletionKindKeyword,
				InsertText: kw,
			})
		}
	}

	seen := make(map[string]bool)
	for _, d := range c.Definitions() {
		if d.Proto.Kind != parser.KindNormal || seen[d.Name] || !strings.HasPrefix(d.Name, prefix) {
			continue
		}
		seen[d.Name] = true
		items = append(items, CompletionItem{
			Label:      d.Name,
			Kind:       CompletionKindFunction,
			Detail:     d.Signature(),
			InsertText: formatCallInsert(d.Proto),
		})
	}
	return items
}

type CompletionKind int

const (
	CompletionKindKeyword CompletionKind = iota
	CompletionKindFunction
)

type CompletionItem struct {
	Label      string
	Kind       CompletionKind
	Detail     string
	InsertText string
}

func formatCallInsert(p *parser.Prototype) string {
	if len(p.Params) == 0 {
		return p.Name + "()"
	}
	placeholders := make([]string, len(p.Params))
	for i, name := range p.Params {
		placeholders[i] = fmt.Sprintf("${%d:%s}", i+1, name)
	}
	return p.Name + "(" + strings.Join(placeholders, ", ") + ")"
}
