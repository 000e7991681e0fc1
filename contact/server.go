package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/lixenwraith/attention-era/constants"
	"github.com/lixenwraith/attention-era/status"
	"go.uber.org/zap"
)

// Sink receives accepted submissions; an error turns into a 500
type Sink func(ctx context.Context, s Submission, ack Ack) error

// Options configures the router, zero values take the defaults
type Options struct {
	Logger  *zap.Logger
	Now     func() time.Time
	NewID   func() uuid.UUID
	Sink    Sink
	Timeout time.Duration
	Metrics *status.Registry
}

// NewRouter builds the intake router
func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.New
	}
	if opts.Sink == nil {
		opts.Sink = logSink(opts.Logger)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.ContactRequestTimeout
	}
	if opts.Metrics == nil {
		opts.Metrics = status.NewRegistry()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(recoverer(opts.Logger))
	r.Use(middleware.Timeout(opts.Timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Post(constants.ContactPath, intake(opts))

	return r
}

// logSink records the submission without storing it
func logSink(logger *zap.Logger) Sink {
	return func(ctx context.Context, s Submission, ack Ack) error {
		logger.Info("contact submission received",
			zap.String("id", ack.ID),
			zap.String("codename", s.Codename),
			zap.Int("message_len", len(s.Message)),
			zap.String("request_id", middleware.GetReqID(ctx)),
		)
		return nil
	}
}

func intake(opts Options) http.HandlerFunc {
	accepted := opts.Metrics.Ints.Get(status.ContactOK)
	rejected := opts.Metrics.Ints.Get(status.ContactInvalid)
	failed := opts.Metrics.Ints.Get(status.ContactErrors)

	return func(w http.ResponseWriter, r *http.Request) {
		var sub Submission
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, constants.ContactBodyLimit))
		if err := dec.Decode(&sub); err != nil {
			rejected.Add(1)
			writeJSON(w, http.StatusBadRequest, errorBody{Message: MsgInvalidBody})
			return
		}
		if err := sub.Validate(); err != nil {
			rejected.Add(1)
			writeJSON(w, http.StatusBadRequest, errorBody{Message: MsgMissingFields})
			return
		}

		ack := Ack{
			Message:   MsgReceived,
			Timestamp: opts.Now().UTC(),
			ID:        opts.NewID().String(),
		}
		if err := opts.Sink(r.Context(), sub, ack); err != nil {
			opts.Logger.Error("process contact submission", zap.Error(err),
				zap.String("request_id", middleware.GetReqID(r.Context())))
			failed.Add(1)
			writeJSON(w, http.StatusInternalServerError, errorBody{Message: MsgInternal})
			return
		}
		accepted.Add(1)
		writeJSON(w, http.StatusOK, ack)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote", r.RemoteAddr),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// recoverer turns a handler panic into the JSON 500 body
func recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logger.Error("handler panic",
					zap.Any("panic", rvr),
					zap.Stack("stack"),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
				writeJSON(w, http.StatusInternalServerError, errorBody{Message: MsgInternal})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Server runs the router until its context ends
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer wraps handler in an http.Server on addr
func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// Run listens until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("contact endpoint listening", zap.String("addr", s.srv.Addr))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}
