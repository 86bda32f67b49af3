package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// Brotli defaults: the survey page is a few kilobytes of HTML; tiny JSON
// answers are not worth compressing.
const (
	DefaultBrotliQuality   = 5
	DefaultBrotliMinLength = 1024
)

// brotliWriter holds output back until minLength bytes are known, then
// either streams through a brotli encoder or, if the handler wrote less,
// flushes the bytes untouched.
type brotliWriter struct {
	gin.ResponseWriter
	quality     int
	minLength   int
	pending     []byte
	encoder     *brotli.Writer
	compressing bool
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	if bw.compressing {
		return bw.encoder.Write(data)
	}
	bw.pending = append(bw.pending, data...)
	if len(bw.pending) < bw.minLength {
		return len(data), nil
	}

	h := bw.ResponseWriter.Header()
	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	bw.encoder = brotli.NewWriterLevel(bw.ResponseWriter, bw.quality)
	bw.compressing = true

	pending := bw.pending
	bw.pending = nil
	if _, err := bw.encoder.Write(pending); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

func (bw *brotliWriter) finish() error {
	if bw.compressing {
		return bw.encoder.Close()
	}
	if len(bw.pending) == 0 {
		return nil
	}
	_, err := bw.ResponseWriter.Write(bw.pending)
	bw.pending = nil
	return err
}

// Brotli compresses responses for clients that accept "br".
func Brotli() gin.HandlerFunc {
	return BrotliLevel(DefaultBrotliQuality, DefaultBrotliMinLength)
}

// BrotliLevel is Brotli with an explicit quality (0-11) and size threshold.
func BrotliLevel(quality, minLength int) gin.HandlerFunc {
	if quality < brotli.BestSpeed || quality > brotli.BestCompression {
		quality = DefaultBrotliQuality
	}
	if minLength <= 0 {
		minLength = DefaultBrotliMinLength
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodHead || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		bw := &brotliWriter{ResponseWriter: c.Writer, quality: quality, minLength: minLength}
		c.Writer = bw
		defer func() {
			if err := bw.finish(); err != nil {
				_ = c.Error(err)
			}
		}()
		c.Next()
	}
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(enc, ";")
		if strings.EqualFold(strings.TrimSpace(name), "br") {
			return true
		}
	}
	return false
}
