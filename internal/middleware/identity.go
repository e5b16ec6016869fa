package middleware

import (
	"encoding/json"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/volunteer/api/transport"
	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/pkg/httpcontext"
)

// TrustedIdentity reads the caller asserted by the upstream gateway and rejects
// requests that carry none. Tokens are verified before traffic reaches this service.
func TrustedIdentity(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			identity, err := extractIdentity(ctx)
			if err != nil {
				logger.Debug("rejected request without identity", zap.Error(err))
				deny(ctx, err)
				return
			}
			httpcontext.SetIdentity(ctx, identity)
			next(ctx)
		}
	}
}

func extractIdentity(ctx *fasthttp.RequestCtx) (domain.Identity, error) {
	userID := strings.TrimSpace(string(ctx.Request.Header.Peek(httpcontext.HeaderUserID)))
	if userID == "" {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	role, ok := domain.ParseRole(strings.ToLower(strings.TrimSpace(string(ctx.Request.Header.Peek(httpcontext.HeaderUserRole)))))
	if !ok {
		return domain.Identity{}, domain.NewError(domain.ErrCodeUnauthorized, "unknown role")
	}
	return domain.Identity{
		UserID:         userID,
		Role:           role,
		OrganizationID: strings.TrimSpace(string(ctx.Request.Header.Peek(httpcontext.HeaderOrganizationID))),
	}, nil
}

func deny(ctx *fasthttp.RequestCtx, err error) {
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), err.Error(), nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetBody(body)
}
