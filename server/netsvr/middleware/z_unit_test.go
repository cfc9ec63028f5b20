package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const payload = `{"game":"tumble","total_win":"12.40"}`

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, payload)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNegotiate(t *testing.T) {
	codecs := newCodecs(DefaultCompressConfig)
	cases := map[string]string{
		"":                   "",
		"gzip":               "gzip",
		"gzip, zstd":         "zstd",
		"zstd;q=0, gzip":     "gzip",
		"br":                 "",
		"*":                  "zstd",
		"*, zstd;q=0":        "gzip",
		"GZIP;q=0.5, br;q=1": "gzip",
	}
	for header, want := range cases {
		got := ""
		if c := negotiate(header, codecs); c != nil {
			got = c.name
		}
		if got != want {
			t.Fatalf("%q: got %q want %q", header, got, want)
		}
	}
}

func TestCompressGzipAndZstd(t *testing.T) {
	h := Compression(http.HandlerFunc(okHandler))
	for range 2 { // 第二輪走 pool 回收的 encoder
		req := httptest.NewRequest(http.MethodGet, "/v1/games", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := serve(h, req)
		if rec.Header().Get("Content-Encoding") != "gzip" {
			t.Fatalf("expected gzip, got %q", rec.Header().Get("Content-Encoding"))
		}
		zr, err := gzip.NewReader(rec.Body)
		if err != nil {
			t.Fatalf("gzip reader: %v", err)
		}
		body, _ := io.ReadAll(zr)
		if string(body) != payload {
			t.Fatalf("gzip body %q", body)
		}

		req = httptest.NewRequest(http.MethodGet, "/v1/games", nil)
		req.Header.Set("Accept-Encoding", "zstd")
		rec = serve(h, req)
		dec, err := zstd.NewReader(bytes.NewReader(rec.Body.Bytes()))
		if err != nil {
			t.Fatalf("zstd reader: %v", err)
		}
		body, err = io.ReadAll(dec)
		dec.Close()
		if err != nil || string(body) != payload {
			t.Fatalf("zstd body %q %v", body, err)
		}
	}
}

func TestCompressSkipsNoBodyAndUpgrade(t *testing.T) {
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodDelete, "/v1/session/x", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := serve(h, req)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 || rec.Header().Get("Content-Encoding") != "" {
		t.Fatalf("204 must stay empty: %d %q %q", rec.Code, rec.Body.String(), rec.Header().Get("Content-Encoding"))
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/stream", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	rec = serve(Compression(http.HandlerFunc(okHandler)), req)
	if rec.Header().Get("Content-Encoding") != "" || rec.Body.String() != payload {
		t.Fatalf("upgrade must not be compressed")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetReqId(r)
	}))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get(ReqIDHeader) != seen {
		t.Fatalf("request id %q header %q", seen, rec.Header().Get(ReqIDHeader))
	}
}

func TestRecoverLogsAndReturns500(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	h := RequestID(Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/v1/spin", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
	out := buf.String()
	if !strings.Contains(out, "http.panic") || !strings.Contains(out, "panic=boom") || !strings.Contains(out, "req_id=") {
		t.Fatalf("unexpected log %q", out)
	}
}

func TestAccessLogStatus(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	h := AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient", http.StatusPaymentRequired)
	}))
	serve(h, httptest.NewRequest(http.MethodGet, "/v1/spin", nil))
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status=402") || !strings.Contains(out, "path=/v1/spin") {
		t.Fatalf("unexpected log %q", out)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"https://view.example"}})(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodOptions, "/v1/spin", nil)
	req.Header.Set("Origin", "https://view.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(h, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://view.example" {
		t.Fatalf("preflight headers %v", rec.Header())
	}
	req = httptest.NewRequest(http.MethodGet, "/v1/spin", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = serve(h, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin must not be allowed")
	}
}
