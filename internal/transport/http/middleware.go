package http

import (
	"log"
	"net/http"
	"time"
)

// RequestLogger logs basic request details, the signer identity when one
// is present, and latency.
func RequestLogger(next http.Handler, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		signer := signerFromRequest(r)
		if signer == "" {
			signer = "-"
		}
		logger.Printf(
			"request method=%s path=%s status=%d signer=%s duration=%s",
			r.Method,
			r.URL.Path,
			rec.status,
			signer,
			time.Since(start),
		)
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
