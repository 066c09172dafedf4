// Package suggestserver is a small suggestion endpoint used by the demo and
// the end-to-end tests. It ranks a fixed catalog against the query and
// answers with [value, label] pairs.
package suggestserver

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/atomicstack/select-autosuggest/internal/logging"
	"github.com/atomicstack/select-autosuggest/internal/logging/events"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

// Options tune the handler.
type Options struct {
	// QueryParams are checked in order for the query. When none is present
	// the first non-empty parameter, by name, is used.
	QueryParams []string
	// Limit caps the number of results. Zero returns every match.
	Limit int
	// Latency delays every answer, which makes the busy state visible.
	Latency time.Duration
}

// Server answers suggestion queries from a catalog.
type Server struct {
	catalog value.Values
	opts    Options
	router  chi.Router

	httpServer *http.Server
	listener   net.Listener
}

// New builds a server for catalog. An empty catalog uses DefaultCatalog.
func New(catalog value.Values, opts Options) *Server {
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	if len(opts.QueryParams) == 0 {
		opts.QueryParams = []string{"q"}
	}
	s := &Server{catalog: catalog.Clone(), opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", healthzHandler)
	r.Get("/suggest", s.suggestHandler)
	r.Post("/suggest", s.suggestHandler)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and serves in the background. It returns the base
// URL of the server.
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	s.listener = ln
	s.httpServer = &http.Server{Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(err)
		}
	}()
	events.App.Serve(ln.Addr().String())
	return "http://" + ln.Addr().String(), nil
}

// Shutdown stops a server started with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Rank returns the catalog entries matching query, best first. Labels
// containing the query as a substring rank ahead of subsequence matches.
func (s *Server) Rank(query string) value.Values {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	labels := s.catalog.Labels()
	ranks := fuzzy.RankFindNormalizedFold(query, labels)
	lower := strings.ToLower(query)
	sort.SliceStable(ranks, func(i, j int) bool {
		a := strings.Contains(strings.ToLower(ranks[i].Target), lower)
		b := strings.Contains(strings.ToLower(ranks[j].Target), lower)
		if a != b {
			return a
		}
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})
	out := make(value.Values, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, s.catalog[rank.OriginalIndex])
	}
	return out.Limit(s.opts.Limit)
}

func (s *Server) suggestHandler(w http.ResponseWriter, r *http.Request) {
	params, err := requestParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	query := s.query(params)

	if s.opts.Latency > 0 {
		select {
		case <-time.After(s.opts.Latency):
		case <-r.Context().Done():
			return
		}
	}

	results := s.Rank(query)
	events.Server.Query(r.Method, query, len(results))
	pairs := make([][2]string, 0, len(results))
	for _, p := range results {
		pairs = append(pairs, [2]string{p.Value, p.Label})
	}
	writeJSON(w, http.StatusOK, pairs)
}

func (s *Server) query(params map[string]string) string {
	for _, key := range s.opts.QueryParams {
		if v := strings.TrimSpace(params[key]); v != "" {
			return v
		}
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(params[k]); v != "" {
			return v
		}
	}
	return ""
}

// requestParams flattens the query string and, for POST, the form or JSON
// body into one map. Body values win.
func requestParams(r *http.Request) (map[string]string, error) {
	params := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	if r.Method != http.MethodPost {
		return params, nil
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.Contains(mediaType, "json") {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, err
		}
		for k, v := range body {
			if s, ok := v.(string); ok {
				params[k] = s
			}
		}
		return params, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	for k, v := range r.PostForm {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params, nil
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error(err)
	}
}
