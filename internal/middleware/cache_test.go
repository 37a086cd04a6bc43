package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/blood-uber/server/internal/config"
)

func keyFor(t *testing.T, cfg config.CacheConfig, target, bloodGroup string) string {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/donors/blood-group/:bloodGroup")
	c.SetParamNames("bloodGroup")
	c.SetParamValues(bloodGroup)
	return cacheKeyFrom(cfg, c)
}

func TestCacheKeyDistinguishesPathParams(t *testing.T) {
	cfg := config.LoadCacheConfig()

	aPos := keyFor(t, cfg, "/api/donors/blood-group/A%2B", "A+")
	oNeg := keyFor(t, cfg, "/api/donors/blood-group/O-", "O-")
	if aPos == oNeg {
		t.Fatalf("A+ and O- share cache key %s", aPos)
	}

	again := keyFor(t, cfg, "/api/donors/blood-group/A%2B", "A+")
	if aPos != again {
		t.Errorf("same request produced keys %s and %s", aPos, again)
	}
}

func TestCacheKeyQueryStrategy(t *testing.T) {
	cfg := config.LoadCacheConfig()

	plain := keyFor(t, cfg, "/api/donors/blood-group/O-", "O-")
	limited := keyFor(t, cfg, "/api/donors/blood-group/O-?limit=5", "O-")
	if plain == limited {
		t.Errorf("query string ignored under strategy %q", cfg.KeyStrategy)
	}

	cfg.KeyStrategy = "path"
	plain = keyFor(t, cfg, "/api/donors/blood-group/O-", "O-")
	limited = keyFor(t, cfg, "/api/donors/blood-group/O-?limit=5", "O-")
	if plain != limited {
		t.Errorf("path strategy should not key on the query string")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	body := []byte(`{"donors":[]}`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(bs)
	if !ok {
		t.Fatal("decode rejected its own encoding")
	}
	if status != http.StatusOK {
		t.Errorf("status = %d", status)
	}
	if gotHdr.Get("Content-Type") != "application/json" {
		t.Errorf("header lost: %v", gotHdr)
	}
	if string(gotBody) != string(body) {
		t.Errorf("body = %s", gotBody)
	}

	if _, _, _, ok := decodePayload([]byte{1, 2, 3}); ok {
		t.Error("short payload accepted")
	}
}
