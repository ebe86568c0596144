package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/KaramelBytes/housing-explorer/internal/dashboard"
	"github.com/KaramelBytes/housing-explorer/internal/logging"
	"github.com/KaramelBytes/housing-explorer/internal/metrics"
)

// accessLog logs each request and records the request metrics under the
// matched route pattern.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		reqID := middleware.GetReqID(r.Context())
		ctx := context.WithValue(r.Context(), logging.RequestIDKey, reqID)

		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)
		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		metrics.HTTPLatency.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())

		s.log.Info("http request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", elapsed),
		)
	})
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *dashboard.Session)

// withSession resolves the {id} URL parameter to an open session.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess, ok := s.session(id)
		if !ok {
			writeError(w, http.StatusNotFound, kindSessionNotFound, "session not found: "+id)
			return
		}
		ctx := context.WithValue(r.Context(), logging.SessionIDKey, id)
		h(w, r.WithContext(ctx), sess)
	}
}
