package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/waterbills/waterbills/internal/types"
)

// RequestIDMiddleware propagates the caller's request ID, minting one when the
// header is absent, and stamps the acting user onto the request context so
// repository writes record who made them.
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUID()
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	ctx = types.SetUserID(ctx, types.DefaultUserID)

	c.Request = c.Request.WithContext(ctx)
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}
