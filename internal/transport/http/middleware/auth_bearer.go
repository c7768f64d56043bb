package middleware

import (
	"context"
	"net/http"
	"strings"
)

// AuthBearer извлекает Bearer-токен из Authorization и кладёт «сырой» токен
// в контекст по ключу CtxAuthToken. Проверку токена выполняет сервисный слой.
func AuthBearer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")

			if auth != "" {
				const prefix = "Bearer "
				if strings.HasPrefix(auth, prefix) && len(auth) > len(prefix) {
					token := strings.TrimSpace(auth[len(prefix):])

					if token != "" {
						ctx := context.WithValue(r.Context(), CtxAuthToken, token)
						r = r.WithContext(ctx)
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken возвращает токен, положенный AuthBearer в контекст запроса.
func BearerToken(ctx context.Context) string {
	if v := ctx.Value(CtxAuthToken); v != nil {
		if token, ok := v.(string); ok {
			return token
		}
	}

	return ""
}
