package httpx

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"present", WithRequestID(context.Background(), "req-1"), "req-1"},
		{"missing", context.Background(), ""},
		{"wrong type", context.WithValue(context.Background(), requestIDContextKey, 12345), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetRequestID(tt.ctx); got != tt.want {
				t.Errorf("GetRequestID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChain_Order(t *testing.T) {
	var calls []string

	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, name+"-before")
				next.ServeHTTP(w, r)
				calls = append(calls, name+"-after")
			})
		}
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "handler")
	})

	Chain(mw("m1"), mw("m2"))(final).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	want := "m1-before,m2-before,handler,m2-after,m1-after"
	if got := strings.Join(calls, ","); got != want {
		t.Errorf("call order = %s, want %s", got, want)
	}
}

func TestChain_Empty(t *testing.T) {
	called := false
	Chain()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if !called {
		t.Error("handler should be called even with no middleware")
	}
}

func TestRequestID(t *testing.T) {
	t.Run("generates uuid", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/links", nil))

		if _, err := uuid.Parse(seen); err != nil {
			t.Errorf("expected valid UUID, got %q: %v", seen, err)
		}
		if rr.Header().Get(RequestIDHeader) != seen {
			t.Errorf("response header %q does not match context id %q", rr.Header().Get(RequestIDHeader), seen)
		}
	})

	t.Run("keeps incoming header", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))

		req := httptest.NewRequest("GET", "/links", nil)
		req.Header.Set(RequestIDHeader, "upstream-id")
		h.ServeHTTP(httptest.NewRecorder(), req)

		if seen != "upstream-id" {
			t.Errorf("request id = %q, want upstream-id", seen)
		}
	})
}

func TestLogger_RecordsStatusAndSize(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteText(w, http.StatusForbidden, "nope")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("DELETE", "/links", nil))

	out := buf.String()
	for _, want := range []string{`"status":403`, `"bytes":4`, `"method":"DELETE"`, `"path":"/links"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %s: %s", want, out)
		}
	}
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	h := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/links", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "internal_error") {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allow all when no origins configured", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/links", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rr := httptest.NewRecorder()
		CORS(nil)(ok).ServeHTTP(rr, req)

		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q, want *", got)
		}
	})

	allowed := []string{"https://app.example.com"}
	tests := []struct {
		origin string
		want   string
	}{
		{"https://app.example.com", "https://app.example.com"},
		{"https://evil.example.com", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run("origin "+tt.origin, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/links", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			CORS(allowed)(ok).ServeHTTP(rr, req)

			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("preflight short-circuits", func(t *testing.T) {
		called := false
		h := CORS(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("OPTIONS", "/links", nil))

		if called {
			t.Error("handler should not run for preflight")
		}
		if rr.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rr.Code)
		}
		if !strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), "DELETE") {
			t.Error("DELETE should be an allowed method")
		}
	})
}
