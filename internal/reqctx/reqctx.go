// internal/reqctx/reqctx.go
package reqctx

import "context"

type key int

const (
	keyRequestID key = iota
	keyEditor
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func GetRequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok
}

// WithEditor — имя редактора из заголовка X-Editor (для блокировок сниппетов).
func WithEditor(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyEditor, name)
}

func GetEditor(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyEditor).(string)
	return v, ok && v != ""
}
