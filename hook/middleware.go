package hook

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xgx-io/failreport"
)

// Middleware answers panicking requests with the failure's status and HTML
// report. http.ErrAbortHandler is re-panicked so net/http can abort the
// connection.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler || !h.Enabled() {
				panic(rec)
			}
			raw, _ := failreport.Capture(0)
			f := failureOf(rec, raw)
			h.logger.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("type", f.TypeName()),
				zap.String("message", f.Message()))
			h.dispatcher.WriteHTTP(w, r, f)
			h.writeLogs(f)
		}()
		next.ServeHTTP(w, r)
	})
}
