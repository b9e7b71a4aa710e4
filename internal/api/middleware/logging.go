package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gigboard/engine/pkg/logger"
)

type requestState struct {
	actorID uint
}

const requestStateKey ctxKey = "request_state"

// Logging puts a request-scoped logger in context and logs each request once it completes.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		state := &requestState{}
		reqLog := logger.L().With(zap.String("request_id", GetRequestID(r.Context())))
		ctx := context.WithValue(r.Context(), requestStateKey, state)
		ctx = logger.WithContext(ctx, reqLog)

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r.WithContext(ctx))

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		}
		if state.actorID != 0 {
			fields = append(fields, zap.Uint("actor_id", state.actorID))
		}
		reqLog.Info("request", fields...)
	})
}

// noteActor records the authenticated actor for the access log.
func noteActor(ctx context.Context, id uint) {
	if s, ok := ctx.Value(requestStateKey).(*requestState); ok {
		s.actorID = id
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }
