package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quickbites/orderhub/internal/core/domain"
	"github.com/quickbites/orderhub/internal/core/port"
)

const authHeaderKey = "Authorization"
const authType = "Bearer"
const callerPayloadKey = "caller_payload"

func authCheck(tokenService port.TokenService, h *Handler) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.Request.Header.Get(authHeaderKey)
		if len(header) == 0 {
			h.handleAbort(ctx, domain.ErrEmptyAuthorizationHeader)
			return
		}

		words := strings.Split(header, " ")
		if len(words) != 2 {
			h.handleAbort(ctx, domain.ErrInvalidAuthorizationHeader)
			return
		}
		if words[0] != authType {
			h.handleAbort(ctx, domain.ErrInvalidAuthorizationType)
			return
		}
		token := words[1]
		payload, err := tokenService.VerifyToken(token)
		if err != nil {
			h.handleAbort(ctx, domain.ErrInvalidToken)
			return
		}

		ctx.Set(callerPayloadKey, payload)

		ctx.Next()
	}
}

func roleCheck(h *Handler, roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		caller := getCallerIdentity(ctx)
		for _, role := range roles {
			if caller.Role == role {
				ctx.Next()
				return
			}
		}
		h.handleAbort(ctx, domain.ErrForbidden)
	}
}

func getCallerIdentity(ctx *gin.Context) *port.TokenPayload {
	return ctx.MustGet(callerPayloadKey).(*port.TokenPayload)
}
