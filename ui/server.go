package ui

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/kaleido/format"
	"github.com/dhamidi/kaleido/kal/parser"
)

//go:embed static templates
var embeddedFS embed.FS

// maxSourceBytes bounds the request body accepted by the parse endpoints.
const maxSourceBytes = 1 << 20

type Server struct {
	staticFS  fs.FS
	templates *template.Template
	mux       *http.ServeMux
	log       commonlog.Logger
}

func NewServer() (*Server, error) {
	staticFS := overlayFS("ui/static", mustSub(embeddedFS, "static"))
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	tmpl, err := template.New("").ParseFS(templateFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		staticFS:  staticFS,
		templates: tmpl,
		mux:       http.NewServeMux(),
		log:       commonlog.GetLogger("kal.ui"),
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("POST /api/parse", s.handleAPIParse)
	s.mux.HandleFunc("POST /{$}", s.handleIndexPost)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ParseResult is the outcome of parsing one submitted program. Items is
// present unless the program has a syntax error; Incomplete marks a tail
// that needs more input and Leftover counts its tokens.
type ParseResult struct {
	Items      json.RawMessage `json:"items,omitempty"`
	Formatted  string          `json:"formatted,omitempty"`
	Incomplete bool            `json:"incomplete,omitempty"`
	Leftover   int             `json:"leftover,omitempty"`
	Error      string          `json:"error,omitempty"`
	Line       int             `json:"line,omitempty"`
	Column     int             `json:"column,omitempty"`
}

// Parse runs source through a fresh operator table.
func Parse(source string) (*ParseResult, error) {
	tokens, lexErr := parser.Tokenize([]byte(source), "")
	res := &ParseResult{}
	if lexErr != nil {
		res.Incomplete = parser.IsIncomplete(lexErr)
		if !res.Incomplete {
			res.Error = lexErr.Error()
			return res, nil
		}
	}

	items, leftover, err := parser.Parse(tokens, nil)
	if err != nil {
		res.Error = err.Error()
		var syntaxErr *parser.SyntaxError
		if errors.As(err, &syntaxErr) && syntaxErr.Token != nil {
			res.Line = syntaxErr.Token.Span.Start.Line
			res.Column = syntaxErr.Token.Span.Start.Column
		}
		return res, nil
	}

	if len(leftover) > 0 {
		res.Incomplete = true
		res.Leftover = len(leftover)
	}

	var tree, text bytes.Buffer
	if err := format.NewASTJSONEncoder(&tree).Encode(items); err != nil {
		return nil, err
	}
	if err := format.NewKalEncoder(&text).Encode(items); err != nil {
		return nil, err
	}
	res.Items = bytes.TrimSpace(tree.Bytes())
	res.Formatted = text.String()
	return res, nil
}

type indexData struct {
	Source string
	Result *ParseResult
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Errorf("render %s: %s", name, err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", indexData{Source: r.URL.Query().Get("source")})
}

func (s *Server) handleIndexPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSourceBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
		return
	}
	source := r.FormValue("source")
	res, err := Parse(source)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.render(w, "index.html", indexData{Source: source, Result: res})
}

type parseRequest struct {
	Source string `json:"source"`
}

func (s *Server) handleAPIParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSourceBytes)

	var req parseRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
			return
		}
		req.Source = r.FormValue("source")
	}

	res, err := Parse(req.Source)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Debugf("parsed %d bytes: incomplete=%t error=%q", len(req.Source), res.Incomplete, res.Error)

	status := http.StatusOK
	if res.Error != "" {
		status = http.StatusUnprocessableEntity
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(res)
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// overlayFS serves files from primaryPath on disk when present, falling
// back to the embedded copy. It lets templates be edited without a rebuild.
type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}
