// Package web serves the single-page front end, either from the built assets
// or by proxying to the development bundler.
package web

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const apiPrefix = "/api/"

// Mount installs the front end as the router's fallback handler. API paths
// that match no route get a JSON 404.
func Mount(r *gin.Engine, staticDir, devServerURL string, log *zap.Logger) error {
	var serve gin.HandlerFunc
	if devServerURL != "" {
		target, err := url.Parse(devServerURL)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return fmt.Errorf("invalid DEV_SERVER_URL %q", devServerURL)
		}
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
			log.Warn("dev server unreachable", zap.String("target", devServerURL), zap.Error(err))
			w.WriteHeader(http.StatusBadGateway)
		}
		log.Info("proxying front end to dev server", zap.String("target", devServerURL))
		serve = func(c *gin.Context) { proxy.ServeHTTP(c.Writer, c.Request) }
	} else {
		serve = staticHandler(staticDir)
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
			return
		}
		serve(c)
	})
	return nil
}

// staticHandler serves files from dir and falls back to index.html so that
// client-side routes such as /report and /admin load the app.
func staticHandler(dir string) gin.HandlerFunc {
	index := filepath.Join(dir, "index.html")
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}

		clean := path.Clean("/" + c.Request.URL.Path)
		file := filepath.Join(dir, filepath.FromSlash(clean))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		if _, err := os.Stat(index); err != nil {
			c.String(http.StatusNotFound, "front end not built")
			return
		}
		c.File(index)
	}
}
