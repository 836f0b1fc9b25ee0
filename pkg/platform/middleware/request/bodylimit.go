package request

import (
	"errors"
	"net/http"
)

// DefaultBodyLimit caps request bodies on the development backend. The only
// body it accepts is the identity token exchange, a single JWT of a few KB.
const DefaultBodyLimit int64 = 64 << 10

// BodyLimit wraps each request body in http.MaxBytesReader. Reading past
// maxBytes fails with *http.MaxBytesError and the server closes the
// connection after the response. Install it before any handler that
// decodes JSON.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// IsBodyTooLarge reports whether err came from reading past the BodyLimit cap.
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
