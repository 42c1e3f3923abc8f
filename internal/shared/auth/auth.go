package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenFrom extrai o segredo administrativo da requisição.
// Aceita o header "X-Admin-Token" ou "Authorization: Bearer <token>".
func TokenFrom(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-Admin-Token")); v != "" {
		return v
	}
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) >= 7 && strings.EqualFold(v[:7], "Bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return ""
}

// Equal compara dois tokens em tempo constante.
// Retorna false quando o esperado está vazio (endpoint sem segredo configurado nega tudo).
func Equal(got, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// Middleware rejeita com 401 antes de qualquer processamento quando o
// segredo compartilhado está ausente ou divergente.
func Middleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Equal(TokenFrom(r), token) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
