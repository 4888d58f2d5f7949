package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey   = "response_meta"
	requestStartKey   = "request_start"
	cacheHitMetaKey   = "cache_hit"
	processingMetaKey = "processing_time_ms"
)

// WithResponseMeta gives every request an empty envelope meta map and
// remembers when the request started.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetMeta stores one envelope meta value for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	meta := ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
		c.Set(responseMetaKey, meta)
	}
	meta[key] = value
}

// SetCacheHit records whether a cached result served the request.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, cacheHitMetaKey, hit)
}

// StampProcessingTime records the time spent since WithResponseMeta saw the
// request, or since fallback when the middleware is not installed.
func StampProcessingTime(c *gin.Context, fallback time.Time) {
	start := fallback
	if c != nil {
		if value, ok := c.Get(requestStartKey); ok {
			if t, ok := value.(time.Time); ok {
				start = t
			}
		}
	}
	SetMeta(c, processingMetaKey, time.Since(start).Milliseconds())
}

// ExtractMeta returns the meta map stored on the context, or nil.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	value, ok := c.Get(responseMetaKey)
	if !ok {
		return nil
	}
	meta, _ := value.(map[string]interface{})
	return meta
}
