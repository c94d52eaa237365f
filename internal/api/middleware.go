package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"delivery-log-service/internal/platform/obs"
)

// statusWriter captures the final HTTP status code and number of bytes
// written, to tell "handler returned 200" apart from "client got a response".
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Record implicit 200 responses when handlers write without calling WriteHeader.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// loggingMiddleware tags each request with an id and logs end-to-end
// duration and response size.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := fmt.Sprintf("%d", start.UnixNano())
		r = r.WithContext(obs.WithRequestID(r.Context(), reqID))

		sw := &statusWriter{
			ResponseWriter: w,
			status:         0,
		}

		next.ServeHTTP(sw, r)

		duration := time.Since(start).Milliseconds()

		log.Printf(
			"req_id=%s method=%s path=%s status=%d bytes=%d dur=%dms",
			reqID, r.Method, r.URL.RequestURI(), sw.status, sw.bytes, duration,
		)
	})
}

// faultReply is the generic failure message a sender sees when a handler
// panics. It is the only reply the service sends with a 500.
const faultReply = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<Response><Message>Something went wrong handling that message. Please try again.</Message></Response>`

// recoverMiddleware converts any unhandled fault into a logged 500 reply so
// one bad request cannot take the webhook loop down. The process keeps
// serving subsequent requests.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic recovered: method=%s path=%s err=%v", r.Method, r.URL.Path, rec)

				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(http.StatusInternalServerError)
				if _, err := fmt.Fprint(w, faultReply); err != nil {
					log.Printf("fault reply write failed: %v", err)
				}
			}
		}()

		next.ServeHTTP(w, r)
	})
}
