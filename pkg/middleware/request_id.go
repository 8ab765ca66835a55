package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/landclear/quote-planner/pkg/requestid"
)

// RequestID takes the request id from the X-Request-Id header, or from chi's
// own RequestID middleware, or generates one. The id is stored with the
// requestid package and echoed back in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestid.Header)
		if requestID == "" {
			requestID = middleware.GetReqID(r.Context())
		}
		if requestID == "" {
			requestID = requestid.Generate()
		}

		w.Header().Set(requestid.Header, requestID)
		next.ServeHTTP(w, r.WithContext(requestid.ToContext(r.Context(), requestID)))
	})
}
