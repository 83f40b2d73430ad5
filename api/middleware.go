// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"
	"time"

	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Logging puts a request scoped logger on the request context and logs each
// completed request.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			l := logger.With(zap.String("method", r.Method), zap.String("path", r.URL.Path))
			rec := &statusRecorder{ResponseWriter: rw, code: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(sallust.With(r.Context(), l)))
			l.Debug("request", zap.Int("code", rec.code), zap.Duration("duration", time.Since(start)))
		})
	}
}
