package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestStaticWithSPAFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	r := gin.New()
	require.NoError(t, Mount(r, dir, "", zap.NewNop()))

	w := get(r, "/assets/app.js")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())

	for _, route := range []string{"/", "/report", "/live", "/admin", "/signin", "/signup"} {
		w = get(r, route)
		assert.Equal(t, http.StatusOK, w.Code, route)
		assert.Contains(t, w.Body.String(), "app", route)
	}

	w = get(r, "/../../etc/passwd")
	assert.NotContains(t, w.Body.String(), "root:")

	w = get(r, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestStaticNotBuilt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	require.NoError(t, Mount(r, t.TempDir(), "", zap.NewNop()))
	assert.Equal(t, http.StatusNotFound, get(r, "/report").Code)
}

func TestDevServerProxy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("bundler:" + r.URL.Path))
	}))
	defer upstream.Close()

	r := gin.New()
	require.NoError(t, Mount(r, "unused", upstream.URL, zap.NewNop()))

	w := get(r, "/src/main.tsx")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bundler:/src/main.tsx", w.Body.String())

	assert.Equal(t, http.StatusNotFound, get(r, "/api/nope").Code)
}

func TestInvalidDevServerURL(t *testing.T) {
	assert.Error(t, Mount(gin.New(), "dist", "not a url", zap.NewNop()))
}
