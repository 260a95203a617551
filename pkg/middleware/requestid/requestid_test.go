package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seen struct {
	gin string
	ctx string
}

func newRouter(s *seen) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		s.gin = Value(c)
		s.ctx = FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return r
}

func TestMiddlewareGeneratesID(t *testing.T) {
	var s seen
	w := httptest.NewRecorder()
	newRouter(&s).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(s.gin)
	require.NoError(t, err)
	assert.Equal(t, s.gin, s.ctx)
	assert.Equal(t, s.gin, w.Header().Get(headerKey))
}

func TestMiddlewareClientIDs(t *testing.T) {
	cases := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "plain", header: "abc-123", keep: true},
		{name: "trace style", header: "export:2025.06_01", keep: true},
		{name: "too long", header: strings.Repeat("x", maxLength+1)},
		{name: "control characters", header: "abc\tdef"},
		{name: "spaces", header: "abc def"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var s seen
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(headerKey, tc.header)
			newRouter(&s).ServeHTTP(httptest.NewRecorder(), req)
			if tc.keep {
				assert.Equal(t, tc.header, s.gin)
			} else {
				assert.NotEqual(t, tc.header, s.gin)
				assert.NotEmpty(t, s.gin)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
	assert.Equal(t, "job-7", FromContext(WithValue(context.Background(), "job-7")))
}
