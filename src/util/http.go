package util

import (
	"bufio"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// LogHandler provides middleware that logs all requests and response codes
// using logrus.
func LogHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rwi := &rwInterceptor{ResponseWriter: w}
		next.ServeHTTP(rwi, r)

		entry := log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rwi.statusCode,
			"duration": time.Since(start),
		})
		switch code := rwi.statusCode; {
		case code >= 500:
			entry.Error("Request failed")
		case code >= 400:
			entry.Warn("Bad request")
		default:
			entry.Debug("Request served")
		}
	})
}

type rwInterceptor struct {
	http.ResponseWriter
	statusCode int
}

func (rwi *rwInterceptor) WriteHeader(code int) {
	rwi.statusCode = code
	rwi.ResponseWriter.WriteHeader(code)
}

func (rwi *rwInterceptor) Write(b []byte) (int, error) {
	if rwi.statusCode == 0 {
		rwi.WriteHeader(http.StatusOK)
	}
	return rwi.ResponseWriter.Write(b)
}

// Flush lets event streams pass through the interceptor.
func (rwi *rwInterceptor) Flush() {
	if f, ok := rwi.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rwi *rwInterceptor) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return rwi.ResponseWriter.(http.Hijacker).Hijack()
}
