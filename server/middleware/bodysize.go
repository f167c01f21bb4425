package middleware

import (
	"net/http"

	apperrors "github.com/nyayagpt/nyaya/errors"
	"github.com/nyayagpt/nyaya/util"
)

const defaultMaxBodySize = 1 << 20

// BodySizeLimit caps request bodies at maxSize ("1MB", "512KB"). Paths in
// perPath get their own cap, which is how audio uploads are allowed more
// room than JSON requests. A declared Content-Length over the cap is
// rejected with 413 before the handler runs.
func BodySizeLimit(maxSize string, perPath map[string]string) Middleware {
	limit := util.ParseSize(maxSize, defaultMaxBodySize)
	limits := make(map[string]int64, len(perPath))
	for path, size := range perPath {
		limits[path] = util.ParseSize(size, limit)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := limit
			if l, ok := limits[r.URL.Path]; ok {
				n = l
			}
			if r.ContentLength > n {
				writeError(w, apperrors.BodyTooLarge(n))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
