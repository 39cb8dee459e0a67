package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-payments/pkg/response"
)

const CtxRawBodyKey = "raw_body"

// RawBody reads the request body once, unmodified, and keeps it in the context
// for signature checks. Bodies over limit bytes are rejected.
func RawBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
		if err != nil {
			response.Abort(c, http.StatusBadRequest, "unreadable body", nil)
			return
		}
		if int64(len(body)) > limit {
			response.Abort(c, http.StatusRequestEntityTooLarge, "body too large", nil)
			return
		}
		c.Set(CtxRawBodyKey, body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

// RawBodyFrom returns the bytes stored by RawBody, or nil.
func RawBodyFrom(c *gin.Context) []byte {
	v, ok := c.Get(CtxRawBodyKey)
	if !ok {
		return nil
	}
	b, _ := v.([]byte)
	return b
}
