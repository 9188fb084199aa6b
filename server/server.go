// Package server serves the dashboard page, its chart images and the JSON API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/launchdash/launchdash/dashboard"
	"github.com/launchdash/launchdash/render"
)

// Options configures a Server.
type Options struct {
	Address         string
	Compression     bool
	PrettyHTML      bool
	ShutdownTimeout time.Duration
}

// Server is the HTTP front end of a Dashboard.
type Server struct {
	dash     *dashboard.Dashboard
	renderer render.Renderer
	opts     Options
	logger   logrus.FieldLogger
	handler  http.Handler
}

// New wires the routes and middleware for dash.
func New(dash *dashboard.Dashboard, renderer render.Renderer, opts Options, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		dash:     dash,
		renderer: renderer,
		opts:     opts,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/layout", s.handleLayout)
	mux.HandleFunc("GET /api/sites", s.handleSites)
	mux.HandleFunc("GET /api/charts/{id}", s.handleChart)
	mux.HandleFunc("GET /charts/{file}", s.handleChartImage)

	var h http.Handler = mux
	if opts.Compression {
		h = compress(h)
	}
	s.handler = requestID(accessLog(h, logger))
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe listens on the configured address until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", s.opts.Address)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("address", ln.Addr().String()).Info("dashboard listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serving")
	}
	return nil
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := render.RenderPage(&buf, s.dash.Layout(), s.opts.PrettyHTML); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ds := s.dash.Dataset()
	payload, err := ds.PayloadStats()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"launches": ds.Len(),
		"sites":    len(ds.Sites()),
		"payload":  payload,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.Layout())
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	result, err := s.dash.SiteSummary()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	result, err := s.dash.Dispatch(r.PathValue("id"), sel)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChartImage(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	dot := strings.LastIndexByte(file, '.')
	if dot <= 0 {
		s.writeError(w, r, http.StatusNotFound, errors.Errorf("no chart image %q", file))
		return
	}
	id := file[:dot]

	format, err := render.ParseFormat(file[dot+1:])
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}

	sel, err := s.selection(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	result, err := s.dash.Dispatch(id, sel)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	var buf bytes.Buffer
	contentType, err := s.renderer.Render(&buf, result.ChartConfig, format)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}

// selection reads site, low and high from the query, defaulting to the
// initial page state.
func (s *Server) selection(r *http.Request) (dashboard.Selection, error) {
	sel := s.dash.DefaultSelection()
	q := r.URL.Query()

	if q.Has("site") {
		sel.Site = q.Get("site")
	}

	var err error
	if sel.Low, err = parseBound(q.Get("low"), sel.Low); err != nil {
		return sel, errors.Wrap(err, "low")
	}
	if sel.High, err = parseBound(q.Get("high"), sel.High); err != nil {
		return sel, errors.Wrap(err, "high")
	}
	return sel, nil
}

func parseBound(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Errorf("invalid number %q", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Errorf("invalid number %q", raw)
	}
	return v, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrUnknownOutput):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrInvalidRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ============================================================================
// RESPONSES
// ============================================================================

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	id := RequestIDFrom(r.Context())
	entry := s.logger.WithFields(logrus.Fields{
		"request_id": id,
		"status":     status,
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithError(err).Debug("request rejected")
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
