package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/logger"
)

// Recovery returns middleware that turns a panic into a 500 INTERNAL_ERROR
// response and logs the stack.
func Recovery(log *logger.Logger) Middleware {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
					"path", r.URL.Path,
					"method", r.Method,
				))
				body, _ := json.Marshal(apperrors.New(apperrors.ErrCodeInternal, "Internal server error", http.StatusInternalServerError).ToResponse())
				writeError(w, http.StatusInternalServerError, body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
