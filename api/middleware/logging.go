package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/mise-backend/pkg/logger"
)

func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"method": r.Method,
					"path":   r.URL.Path,
				})
			}

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			if logg != nil {
				logg.Info(ctx, "request.start")
			}

			defer func() {
				if rec.status == 0 {
					rec.status = http.StatusOK
				}
				if logg != nil {
					fields := map[string]any{
						"status":      rec.status,
						"bytes":       rec.bytes,
						"duration_ms": time.Since(start).Milliseconds(),
					}
					if p := recover(); p != nil {
						fields["aborted"] = true
						logg.Warn(logg.WithFields(ctx, fields), "request.aborted")
						panic(p)
					}
					logg.Info(logg.WithFields(ctx, fields), "request.complete")
				}
			}()

			next.ServeHTTP(rec, r.WithContext(ctx))
		})
	}
}

// statusRecorder keeps Flush reachable through http.ResponseController.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
