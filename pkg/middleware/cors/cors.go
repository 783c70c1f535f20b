package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowHeaders = "Authorization, Content-Type, X-Requested-With, X-Request-ID"
	allowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	maxAge       = "600"
)

// New builds a CORS middleware from the ALLOWED_ORIGINS config list. An
// empty list or a "*" entry allows any origin; other entries are matched
// case-insensitively with any trailing slash ignored.
func New(allowedOrigins []string) gin.HandlerFunc {
	allowed := newOriginList(allowedOrigins)

	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Vary", "Origin")

		origin := c.GetHeader("Origin")
		switch {
		case origin == "":
			if allowed.wildcard {
				header.Set("Access-Control-Allow-Origin", "*")
			}
		case allowed.contains(origin):
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
		}

		header.Set("Access-Control-Allow-Headers", allowHeaders)
		header.Set("Access-Control-Allow-Methods", allowMethods)
		header.Set("Access-Control-Max-Age", maxAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type originList struct {
	wildcard bool
	exact    map[string]struct{}
}

func newOriginList(origins []string) originList {
	list := originList{
		wildcard: len(origins) == 0,
		exact:    make(map[string]struct{}, len(origins)),
	}
	for _, origin := range origins {
		switch canonical := canonicalOrigin(origin); canonical {
		case "":
		case "*":
			list.wildcard = true
		default:
			list.exact[canonical] = struct{}{}
		}
	}
	return list
}

func (l originList) contains(origin string) bool {
	if l.wildcard {
		return true
	}
	_, ok := l.exact[canonicalOrigin(origin)]
	return ok
}

func canonicalOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
