package httpserver

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rzbill/flostream/internal/runtime"
	"github.com/rzbill/flostream/internal/server/http/controllers"
	streamsvc "github.com/rzbill/flostream/internal/services/streams"
	logpkg "github.com/rzbill/flostream/pkg/log"
)

const requestIDHeader = "X-Request-ID"

// Server is the HTTP gateway over the runtime.
type Server struct {
	rt     *runtime.Runtime
	srv    *http.Server
	lis    net.Listener
	mu     sync.Mutex
	logger logpkg.Logger
}

// New builds the mux, registers every controller and wraps it with CORS,
// request-id and access logging.
func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	logger = logger.With(logpkg.Component("http"))
	mux := http.NewServeMux()
	svc := streamsvc.NewWithLogger(rt, logger.With(logpkg.Component("streams")))
	controllers.NewControllerRegistry(rt, svc).RegisterAllRoutes(mux)

	s := &Server{rt: rt, logger: logger}
	s.srv = &http.Server{
		Handler:           cors(requestID(s.accessLog(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lis = l
	s.mu.Unlock()
	s.logger.Info("http listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Close closes the listener.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

// Handler returns the root handler, for embedding or tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, rid)
		next.ServeHTTP(w, r.WithContext(logpkg.WithRequestID(r.Context(), rid)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		l := s.logger.WithContext(r.Context())
		fields := []logpkg.Field{
			logpkg.Str("method", r.Method),
			logpkg.Str("path", r.URL.Path),
			logpkg.Int("status", rec.status),
			logpkg.Dur("dur", time.Since(start)),
		}
		if rec.status >= http.StatusInternalServerError {
			l.Warn("http request", fields...)
			return
		}
		l.Debug("http request", fields...)
	})
}
