// Package server exposes order assignment and group tree rendering over
// HTTP, for build pipelines and editors that would rather not shell out to
// the CLI.
//
// Routes:
//
//	GET  /healthz               liveness and build version
//	POST /v1/assign             scene in, assigned orders out (JSON)
//	POST /v1/render/{format}    scene in, one artifact out (dot, svg, png, pdf, json)
//
// The request body is a scene file. Its encoding is taken from the
// Content-Type header (application/json, application/yaml,
// application/toml) or the scene query parameter, defaulting to JSON.
// Query parameters mirror the CLI flags: mode, layer, detailed,
// groups_only, root (repeatable or comma-separated), scale, and refresh.
package server

import (
	"context"
	"errors"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sortgroup/pkg/buildinfo"
	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
	sgio "github.com/matzehuels/sortgroup/pkg/io"
	"github.com/matzehuels/sortgroup/pkg/pipeline"
	"github.com/matzehuels/sortgroup/pkg/sorting"
)

// DefaultMaxBodyBytes caps scene uploads when Options leaves it unset.
const DefaultMaxBodyBytes = 8 << 20

// shutdownGrace bounds how long in-flight requests may finish after the
// serve context ends.
const shutdownGrace = 5 * time.Second

// Options configures a Server.
type Options struct {
	// Defaults seeds every request's pipeline options; query parameters
	// override Mode, Layer, and Detailed.
	Defaults pipeline.Options

	Timeout      time.Duration // per request, 0 for none
	MaxBodyBytes int64
}

// Server handles HTTP requests with a shared pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
}

// New creates a server. The runner's cache is shared across requests.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{runner: runner, logger: logger, opts: opts}
}

// Handler returns the router with logging, panic recovery, and the
// request timeout applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if s.opts.Timeout > 0 {
		r.Use(middleware.Timeout(s.opts.Timeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/assign", s.handleAssign)
		r.Post("/render/{format}", s.handleRender)
	})
	return r
}

// Run listens on addr and serves until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("serving", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

// AssignResponse is the body of a successful /v1/assign call.
type AssignResponse struct {
	Orders []sgio.OrderRow `json:"orders"`
	Stats  AssignStats     `json:"stats"`
}

// AssignStats summarizes the assignment frame.
type AssignStats struct {
	Renderers int          `json:"renderers"`
	Groups    int          `json:"groups"`
	Written   int          `json:"written"`
	Passes    []PassStats  `json:"passes"`
	Duration  jsonDuration `json:"duration"`
}

// PassStats describes the pass of one root group.
type PassStats struct {
	Root    string `json:"root"`
	Total   int    `json:"total"`
	Groups  int    `json:"groups"`
	Members int    `json:"members"`
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.execute(w, r, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := AssignResponse{
		Orders: res.Orders,
		Stats: AssignStats{
			Renderers: res.Stats.Renderers,
			Groups:    res.Stats.Groups,
			Written:   res.Stats.Written(),
			Passes:    make([]PassStats, 0, len(res.Stats.Passes)),
			Duration:  jsonDuration(res.Stats.AssignTime),
		},
	}
	if resp.Orders == nil {
		resp.Orders = []sgio.OrderRow{}
	}
	for _, p := range res.Stats.Passes {
		resp.Stats.Passes = append(resp.Stats.Passes, PassStats{Root: p.Root, Total: p.Total, Groups: p.Groups, Members: p.Members})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	opts.Formats = []string{format}
	opts.GroupsOnly = q.Get("groups_only") == "true"
	opts.Refresh = q.Get("refresh") == "true"
	for _, v := range q["root"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				opts.Roots = append(opts.Roots, id)
			}
		}
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, r, sgerrors.Wrap(sgerrors.ErrCodeInvalidInput, err, "scale %q", v))
			return
		}
		opts.Scale = scale
	}

	res, err := s.execute(w, r, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cacheStatus := "miss"
	if res.CacheHit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	w.Write(res.Artifacts[format])
}

var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

// execute reads the request body as a scene and runs the pipeline on it.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, opts pipeline.Options) (*pipeline.Result, error) {
	format, err := sceneFormat(r)
	if err != nil {
		return nil, err
	}
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	data, err := readAll(body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, sgerrors.New(sgerrors.ErrCodeInvalidInput, "request body must hold a scene")
	}
	return s.runner.ExecuteData(r.Context(), data, format, opts)
}

// requestOptions layers query parameters over the server defaults.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.opts.Defaults
	opts.Logger = s.logger
	q := r.URL.Query()
	if v := q.Get("mode"); v != "" {
		m, err := sorting.ParseMode(v)
		if err != nil {
			return opts, err
		}
		opts.Mode = m
	}
	if v := q.Get("layer"); v != "" {
		opts.Layer = sorting.Layer(v)
	}
	if v := q.Get("detailed"); v != "" {
		opts.Detailed = v == "true"
	}
	return opts, nil
}

// sceneFormat picks the scene encoding from the scene query parameter or
// the Content-Type header.
func sceneFormat(r *http.Request) (sgio.Format, error) {
	if v := r.URL.Query().Get("scene"); v != "" {
		return sgio.ParseFormat(v)
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return sgio.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", sgerrors.Wrap(sgerrors.ErrCodeInvalidFormat, err, "content type %q", ct)
	}
	switch mt {
	case "application/json", "text/json":
		return sgio.FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return sgio.FormatYAML, nil
	case "application/toml", "text/toml":
		return sgio.FormatTOML, nil
	}
	return "", sgerrors.New(sgerrors.ErrCodeInvalidFormat, "unsupported scene content type %q", mt)
}
