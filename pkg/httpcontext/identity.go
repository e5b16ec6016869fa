package httpcontext

import (
	"github.com/valyala/fasthttp"

	"github.com/fastygo/volunteer/domain"
)

const identityKey = "identity"

// Trusted identity headers set by the gateway in front of the service.
const (
	HeaderUserID         = "X-User-ID"
	HeaderUserRole       = "X-User-Role"
	HeaderOrganizationID = "X-Organization-ID"
)

// SetIdentity stores the caller on the request.
func SetIdentity(ctx *fasthttp.RequestCtx, identity domain.Identity) {
	ctx.SetUserValue(identityKey, identity)
}

// Identity returns the caller stored by the identity middleware.
func Identity(ctx *fasthttp.RequestCtx) (domain.Identity, bool) {
	identity, ok := ctx.UserValue(identityKey).(domain.Identity)
	if !ok || !identity.IsAuthenticated() {
		return domain.Identity{}, false
	}
	return identity, true
}
