package router

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

func RequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(requestIDKey{}).(uuid.UUID)
	return id, ok
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestIDMiddleware tags each request with a uuid, echoed back in the
// X-Request-Id header and attached to the access log line.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		if err != nil {
			id = uuid.New()
		}

		w.Header().Set(RequestIDHeader, id.String())
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		log.WithContext(ctx).WithFields(log.Fields{
			"requestId": id.String(),
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    rec.status,
			"elapsed":   time.Since(start),
		}).Debug("handled request")
	})
}

func logRequestError(r *http.Request, handlerName string, err error) {
	id, _ := RequestIDFromContext(r.Context())

	log.WithContext(r.Context()).
		WithField("requestId", id.String()).
		Errorf("%s: %v", handlerName, err)
}
