package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func request(r http.Handler, method, origin string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCORSAllowedOrigin(t *testing.T) {
	r := newRouter([]string{"https://ops.example.com/"})

	w := request(r, http.MethodGet, "https://ops.example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://ops.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = request(r, http.MethodOptions, "https://ops.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSRejectedOrigin(t *testing.T) {
	r := newRouter([]string{"https://ops.example.com"})

	w := request(r, http.MethodGet, "https://evil.example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = request(r, http.MethodOptions, "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSNoOriginPassesThrough(t *testing.T) {
	w := request(newRouter(nil), http.MethodGet, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
