// Package server exposes the message pipeline over HTTP: POST /encode turns
// a text payload into a combined ggwave WAV, with /health, /protocols and
// /metrics alongside. Video output is a CLI-only concern and is never
// produced here.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/go-ggwave-message/internal/metrics"
	"github.com/example/go-ggwave-message/internal/protocol"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// EncodeRequest is the JSON body of POST /encode. Zero values fall back to
// the server's configured defaults.
type EncodeRequest struct {
	Text          string   `json:"text"`
	Protocol      *int     `json:"protocol,omitempty"`
	Volume        *int     `json:"volume,omitempty"`
	SampleRate    *int     `json:"sample_rate,omitempty"`
	Pauses        *bool    `json:"pauses,omitempty"`
	PauseDuration *float64 `json:"pause_duration,omitempty"`
}

// MessageEncoder produces combined WAV bytes for a whole message and reports
// how many chunks the message was split into.
type MessageEncoder interface {
	EncodeMessage(ctx context.Context, req EncodeRequest) (wav []byte, chunks int, err error)
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes   int
	workers        int
	requestTimeout time.Duration
	logger         *slog.Logger
	registry       *prometheus.Registry
}

func defaultOptions() options {
	return options{
		maxTextBytes:   64 * 1024,
		workers:        2,
		requestTimeout: 120 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes for POST /encode.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers sets the maximum number of concurrent encode requests.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request encode deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegistry sets the Prometheus registry backing /metrics.
func WithRegistry(r *prometheus.Registry) Option {
	return func(o *options) { o.registry = r }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

type handler struct {
	enc  MessageEncoder
	opts options
	sem  chan struct{} // semaphore for worker pool
	log  *slog.Logger
	m    *metrics.Metrics
}

// NewHandler returns an http.Handler serving /health, /protocols,
// POST /encode and /metrics.
func NewHandler(enc MessageEncoder, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.registry == nil {
		opts.registry = prometheus.NewRegistry()
	}

	h := &handler{
		enc:  enc,
		opts: opts,
		log:  opts.logger,
		m:    metrics.New(opts.registry),
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.counted("/health", h.handleHealth))
	mux.HandleFunc("/protocols", h.counted("/protocols", h.handleProtocols))
	mux.HandleFunc("/encode", h.counted("/encode", h.handleEncode))
	mux.Handle("/metrics", promhttp.HandlerFor(opts.registry, promhttp.HandlerOpts{}))
	return mux
}

// counted wraps an endpoint with the per-endpoint request counter.
func (h *handler) counted(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		h.m.HTTPRequests.WithLabelValues(endpoint, strconv.Itoa(sw.status)).Inc()
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

func (h *handler) handleProtocols(w http.ResponseWriter, _ *http.Request) {
	type entry struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Desc    string `json:"desc"`
		Default bool   `json:"default,omitempty"`
	}

	all := protocol.All()
	out := make([]entry, 0, len(all))
	for _, p := range all {
		out = append(out, entry{ID: p.ID, Name: p.Name, Desc: p.Desc, Default: p.ID == protocol.DefaultID})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return
	}

	var req EncodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text field is required")
		return
	}

	if len(req.Text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	if req.Protocol != nil {
		if _, err := protocol.ByID(*req.Protocol); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Volume != nil && (*req.Volume < 0 || *req.Volume > 100) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid volume %d (valid range 0-100)", *req.Volume))
		return
	}
	if req.SampleRate != nil && *req.SampleRate < 1 {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid sample rate %d", *req.SampleRate))
		return
	}
	if req.PauseDuration != nil && *req.PauseDuration < 0 {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid pause duration %g seconds", *req.PauseDuration))
		return
	}

	// Acquire a worker slot — honour context cancellation while waiting.
	if h.sem != nil {
		select {
		case h.sem <- struct{}{}:
			// slot acquired
		case <-r.Context().Done():
			writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
			return
		}
		defer func() { <-h.sem }()
	}

	// Apply per-request timeout.
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	h.m.EncodeRequests.Inc()

	start := time.Now()
	wav, chunks, err := h.enc.EncodeMessage(ctx, req)
	duration := time.Since(start)
	h.m.EncodeDuration.Observe(duration.Seconds())

	if err != nil {
		h.m.EncodeFailures.Inc()

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			h.log.WarnContext(r.Context(), "encode timed out",
				slog.Int("text_len", len(req.Text)),
				slog.Int64("duration_ms", duration.Milliseconds()),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusGatewayTimeout, "encode timed out")
			return
		}
		h.log.ErrorContext(r.Context(), "encode failed",
			slog.Int("text_len", len(req.Text)),
			slog.Int64("duration_ms", duration.Milliseconds()),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.m.ChunksEncoded.Add(float64(chunks))

	h.log.InfoContext(r.Context(), "encode complete",
		slog.Int("text_len", len(req.Text)),
		slog.Int("chunks", chunks),
		slog.Int64("duration_ms", duration.Milliseconds()),
		slog.Int("wav_bytes", len(wav)),
	)

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wav)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server — wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	addr            string
	enc             MessageEncoder
	handlerOpts     []Option
	shutdownTimeout time.Duration
}

func New(addr string, enc MessageEncoder, optFns ...Option) *Server {
	return &Server{
		addr:            addr,
		enc:             enc,
		handlerOpts:     optFns,
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           NewHandler(s.enc, s.handlerOpts...),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

// ProbeHTTP checks the /health endpoint of a running server.
func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
