package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
)

// Compression gzips responses for clients that accept it. Ranked lists with
// long titles and image URLs compress well. Handlers that encode their own
// output, such as the Prometheus handler, are passed through untouched.
func Compression(level int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") || c.Request.Method == "HEAD" {
			c.Next()
			return
		}

		gw := &gzipWriter{ResponseWriter: c.Writer, level: level}
		c.Writer = gw
		c.Header("Vary", "Accept-Encoding")
		defer gw.close()

		c.Next()
	}
}

// gzipWriter decides on the first body write whether to compress, so it can
// see the headers the handler has set by then.
type gzipWriter struct {
	gin.ResponseWriter
	level       int
	writer      *gzip.Writer
	decided     bool
	passThrough bool
}

func (g *gzipWriter) decide() {
	if g.decided {
		return
	}
	g.decided = true

	if g.Header().Get("Content-Encoding") != "" {
		g.passThrough = true
		return
	}

	gz, err := gzip.NewWriterLevel(g.ResponseWriter, g.level)
	if err != nil {
		g.passThrough = true
		return
	}
	g.writer = gz
	g.Header().Set("Content-Encoding", "gzip")
	g.Header().Del("Content-Length")
}

func (g *gzipWriter) Write(data []byte) (int, error) {
	g.decide()
	if g.passThrough {
		return g.ResponseWriter.Write(data)
	}
	return g.writer.Write(data)
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

func (g *gzipWriter) close() {
	if g.writer != nil {
		g.writer.Close()
	}
}
