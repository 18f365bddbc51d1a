package middleware

import (
	"context"
	"net/http"
	"strings"

	"medication-reminder/internal/ports/auth"
)

type ctxKey string

const sessionKey ctxKey = "session"

// SessionContext resuelve la sesión del request y la deja en el contexto.
// - Con verifier y Bearer token válido => sesión de usuario.
// - Sin verifier (modo dev): header X-Debug-User-ID => sesión de usuario.
// - En cualquier otro caso el request sigue como guest; los handlers nunca
//   cortan por falta de sesión, solo cambia la partición.
func SessionContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := auth.Guest()

			if verifier == nil {
				if uid := strings.TrimSpace(r.Header.Get("X-Debug-User-ID")); uid != "" {
					sess = auth.ForUser(uid)
				}
			} else if token := bearerToken(r.Header.Get("Authorization")); token != "" {
				claims, err := verifier.Verify(r.Context(), token)
				if err == nil && strings.TrimSpace(claims.UserID) != "" {
					sess = auth.ForUser(claims.UserID)
				}
				// Token inválido => guest; no cortamos acá para no acoplar.
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession devuelve la sesión del contexto; guest si no hay.
func GetSession(ctx context.Context) auth.Session {
	v := ctx.Value(sessionKey)
	if v == nil {
		return auth.Guest()
	}
	s, ok := v.(auth.Session)
	if !ok {
		return auth.Guest()
	}
	return s
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
