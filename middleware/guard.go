package middleware

import (
	"net/http"
	"strings"

	goAudit "github.com/MrEthical07/goAudit"
)

func guard(provider goAudit.IdentityProvider, require bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
				ctx = goAudit.WithBearerToken(ctx, token)
			}

			if provider == nil {
				if require {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			identity, err := provider.CurrentActor(ctx)
			if err != nil || identity.ID == "" {
				if require {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				// Anonymous or unresolvable actors pass through; the audited
				// operation surfaces any resolution error on its own path.
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx = goAudit.WithActorID(ctx, identity.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
