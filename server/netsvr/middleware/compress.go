package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// encoder 為 gzip.Writer 與 zstd.Encoder 的共同介面
type encoder interface {
	io.WriteCloser
	Flush() error
	Reset(io.Writer)
}

// codec 一種 Content-Encoding 與其 encoder pool
type codec struct {
	name string
	pool sync.Pool
}

func (c *codec) get(w io.Writer) encoder {
	enc := c.pool.Get().(encoder)
	enc.Reset(w)
	return enc
}

// put 收尾後歸還；discard 表示回應不帶 body，footer 必須丟掉
func (c *codec) put(enc encoder, discard bool) {
	if discard {
		enc.Reset(io.Discard)
	}
	_ = enc.Close()
	c.pool.Put(enc)
}

// CompressConfig 壓縮等級，codec 依伺服器偏好 zstd > gzip 協商。
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
}

func newCodecs(cfg CompressConfig) []*codec {
	zc := &codec{name: "zstd"}
	zc.pool.New = func() any {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(cfg.ZstdLevel), zstd.WithEncoderConcurrency(1))
		if err != nil {
			panic(err)
		}
		return enc
	}
	gc := &codec{name: "gzip"}
	gc.pool.New = func() any {
		enc, err := gzip.NewWriterLevel(nil, cfg.GzipLevel)
		if err != nil {
			panic(err)
		}
		return enc
	}
	return []*codec{zc, gc}
}

// negotiate 依 Accept-Encoding 挑選 codec；q=0 視為拒絕。
func negotiate(header string, codecs []*codec) *codec {
	if header == "" {
		return nil
	}
	accepted := map[string]bool{}
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		ok := true
		if q, found := strings.CutPrefix(strings.TrimSpace(params), "q="); found {
			if v, err := strconv.ParseFloat(q, 64); err == nil && v <= 0 {
				ok = false
			}
		}
		accepted[strings.ToLower(strings.TrimSpace(name))] = ok
	}
	for _, c := range codecs {
		if ok, seen := accepted[c.name]; seen && ok {
			return c
		}
		if ok, seen := accepted["*"]; seen && ok {
			if _, explicit := accepted[c.name]; !explicit {
				return c
			}
		}
	}
	return nil
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") ||
		r.Header.Get("Upgrade") != ""
}

// 1xx / 204 / 304 不帶 body
func isNoBodyStatus(code int) bool {
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

type compressWriter struct {
	http.ResponseWriter
	enc      encoder
	disabled bool
}

func (cw *compressWriter) WriteHeader(code int) {
	cw.Header().Del("Content-Length")
	if isNoBodyStatus(code) {
		cw.disabled = true
		cw.Header().Del("Content-Encoding")
		cw.Header().Del("Vary")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if cw.disabled {
		return cw.ResponseWriter.Write(b)
	}
	h := cw.Header()
	h.Del("Content-Length")
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", http.DetectContentType(b))
	}
	return cw.enc.Write(b)
}

func (cw *compressWriter) Flush() {
	if !cw.disabled {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	cw.disabled = true
	return hj.Hijack()
}

func (cw *compressWriter) Unwrap() http.ResponseWriter { return cw.ResponseWriter }

// Compress 依 Accept-Encoding 以 zstd 或 gzip 壓縮回應；HEAD 與 websocket 升級直接放行。
func Compress(cfg CompressConfig) func(http.Handler) http.Handler {
	codecs := newCodecs(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || isWebSocketUpgrade(r) || w.Header().Get("Content-Encoding") != "" {
				next.ServeHTTP(w, r)
				return
			}
			c := negotiate(r.Header.Get("Accept-Encoding"), codecs)
			if c == nil {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Encoding", c.name)
			w.Header().Add("Vary", "Accept-Encoding")
			cw := &compressWriter{ResponseWriter: w, enc: c.get(w)}
			defer func() { c.put(cw.enc, cw.disabled) }()
			next.ServeHTTP(cw, r)
		})
	}
}

// Compression 使用 DefaultCompressConfig。
var Compression = Compress(DefaultCompressConfig)
