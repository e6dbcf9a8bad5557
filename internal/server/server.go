// Package server carries the automation protocol over HTTP. The transport
// is deliberately thin: it decodes the request envelope, serializes access
// to the live graph, and forwards to the protocol dispatcher; every
// domain-level failure travels in-band in the response body.
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/scenewire/scenewire/internal/eventbus"
	"github.com/scenewire/scenewire/internal/events"
	"github.com/scenewire/scenewire/internal/protocol"
	"github.com/scenewire/scenewire/internal/reqid"
)

type Options struct {
	// Timeout sets a default timeout if the incoming request context has
	// none. 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// Logger receives one line per request. Defaults to the standard
	// logrus logger.
	Logger *logrus.Logger
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option   { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                   { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option      { return func(o *Options) { o.MaxBodyBytes = n } }
func WithLogger(l *logrus.Logger) Option   { return func(o *Options) { o.Logger = l } }

// Handler is an http.Handler serving the automation endpoint.
//
// The live graph is not safe for concurrent mutation; the handler holds a
// graph-wide mutex across each dispatch so the session keeps its
// single-writer guarantee under a concurrent HTTP server.
type Handler struct {
	disp *protocol.Dispatcher
	opt  Options
	mu   sync.Mutex
}

func New(disp *protocol.Dispatcher, opts ...Option) *Handler {
	op := Options{Timeout: 10 * time.Second, Logger: logrus.StandardLogger()}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{disp: disp, opt: op}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}
	ctx, _ = reqid.NewContext(ctx)

	if r.Method != http.MethodPost {
		h.writeJSON(w, http.StatusMethodNotAllowed, protocol.Response{
			Success: false,
			Error:   "method not allowed: POST a request envelope",
		})
		return
	}

	body := io.Reader(r.Body)
	if h.opt.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.opt.MaxBodyBytes)
	}
	var req protocol.Request
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, protocol.Response{
			Success: false,
			Error:   "malformed request body: " + err.Error(),
		})
		return
	}

	start := time.Now()
	eventbus.Publish(ctx, events.RequestStart{Op: req.Op, Remote: r.RemoteAddr})

	h.mu.Lock()
	resp := h.disp.Dispatch(ctx, req)
	h.mu.Unlock()

	eventbus.Publish(ctx, events.RequestFinish{
		Op:        req.Op,
		ErrorCode: resp.ErrorCode,
		Duration:  time.Since(start),
	})
	h.log(req, resp, time.Since(start))
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) log(req protocol.Request, resp protocol.Response, d time.Duration) {
	fields := logrus.Fields{"op": req.Op, "duration": d}
	if resp.Success {
		h.opt.Logger.WithFields(fields).Debug("request ok")
		return
	}
	fields["error_code"] = resp.ErrorCode
	h.opt.Logger.WithFields(fields).Warn(resp.Error)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if h.opt.Pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}
