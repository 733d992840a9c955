package middleware

import (
	"net/http"

	goAudit "github.com/MrEthical07/goAudit"
)

// Actor returns middleware that annotates the request context with the bearer
// token and, when the provider can resolve one, the actor id. Requests are
// never rejected; unresolved actors simply audit as anonymous.
//
//	Docs: docs/middleware.md, docs/identity.md
func Actor(provider goAudit.IdentityProvider) func(http.Handler) http.Handler {
	return guard(provider, false)
}
