package middlewares

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	identityKey
)

// Identity es la identidad autenticada del request. Se puebla en
// Authenticate a partir del access token.
type Identity struct {
	UserID   string
	Email    string
	FullName string
	Token    string
}

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

// GetRequestID retorna el request id del contexto, o "".
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func withIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom retorna la identidad autenticada del contexto. ok es false
// para requests anónimos.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// GetUserID retorna el user id autenticado, o "" si el request es anónimo.
func GetUserID(ctx context.Context) string {
	id, _ := IdentityFrom(ctx)
	return id.UserID
}
