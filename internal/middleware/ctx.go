package middleware

import (
	"net/http"
	"strings"

	"blogsite/internal/reqctx"

	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	// HeaderEditor — имя редактора для блокировок сниппетов.
	HeaderEditor = "X-Editor"
)

// RequestContext кладёт в контекст request id (из заголовка или новый uuid) и редактора.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, rid)
		ctx := reqctx.WithRequestID(r.Context(), rid)

		if editor := strings.TrimSpace(r.Header.Get(HeaderEditor)); editor != "" {
			ctx = reqctx.WithEditor(ctx, editor)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
