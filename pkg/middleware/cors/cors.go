package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowHeaders  = "Authorization, Content-Type, X-Requested-With, X-Request-ID"
	allowMethods  = "GET, POST, PUT, OPTIONS"
	exposeHeaders = "Content-Disposition, X-Request-ID"
)

// matcher holds exact origins and "scheme://*.domain" suffix patterns.
type matcher struct {
	exact    map[string]struct{}
	suffixes []wildcard
}

type wildcard struct {
	scheme string
	suffix string
}

func newMatcher(origins []string) matcher {
	m := matcher{exact: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if scheme, host, ok := strings.Cut(origin, "://*."); ok {
			m.suffixes = append(m.suffixes, wildcard{scheme: scheme + "://", suffix: "." + host})
			continue
		}
		m.exact[origin] = struct{}{}
	}
	return m
}

func (m matcher) allows(origin string) bool {
	origin = strings.TrimRight(origin, "/")
	if _, ok := m.exact[origin]; ok {
		return true
	}
	for _, w := range m.suffixes {
		rest, ok := strings.CutPrefix(origin, w.scheme)
		if ok && strings.HasSuffix(rest, w.suffix) && len(rest) > len(w.suffix) {
			return true
		}
	}
	return false
}

// New returns a CORS middleware for the allowed origins. Entries may use a
// leading wildcard label such as "https://*.th-koeln.de". An empty list
// allows every origin without credentials.
func New(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	origins := newMatcher(allowedOrigins)

	return func(c *gin.Context) {
		h := c.Writer.Header()
		origin := c.GetHeader("Origin")
		switch {
		case origin != "" && (allowAll || origins.allows(origin)):
			h.Set("Access-Control-Allow-Origin", origin)
		case origin == "" && allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		}

		h.Set("Vary", "Origin")
		if !allowAll {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Expose-Headers", exposeHeaders)
		h.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
