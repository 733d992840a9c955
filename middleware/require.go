package middleware

import (
	"net/http"

	goAudit "github.com/MrEthical07/goAudit"
)

func RequireActor(provider goAudit.IdentityProvider) func(http.Handler) http.Handler {
	return guard(provider, true)
}
