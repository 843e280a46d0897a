//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func TestSimAPI_MainEndpoints(t *testing.T) {
	baseURL := strings.TrimRight(envOr("E2E_BASE_URL", "http://localhost:8080"), "/")
	client := &http.Client{Timeout: 20 * time.Second}

	var status map[string]any
	t.Run("status", func(t *testing.T) {
		code, body := mustJSON(t, client, http.MethodGet, baseURL+"/api/sim/status", nil)
		if code != http.StatusOK {
			t.Fatalf("status code=%d body=%s", code, string(body))
		}
		status = decode(t, body)
		if status["run_id"] == "" {
			t.Fatalf("expected run id, body=%s", string(body))
		}
	})

	tileID := -1
	t.Run("find a field tile", func(t *testing.T) {
		for id := 0; id < 400 && tileID < 0; id++ {
			code, body := mustJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/sim/tiles/%d", baseURL, id), nil)
			if code == http.StatusNotFound {
				break
			}
			tile := decode(t, body)
			if tile["category"] == "field" && tile["cloud"] == nil {
				tileID = id
			}
		}
		if tileID < 0 {
			t.Skip("no free field tile on this farm")
		}
	})

	t.Run("create cloud and tick", func(t *testing.T) {
		if tileID < 0 {
			t.Skip("no free field tile")
		}
		code, body := mustJSON(t, client, http.MethodPost, baseURL+"/api/sim/clouds", map[string]any{
			"tile_id": tileID, "duration": 3, "amount": 6000,
		})
		if code != http.StatusCreated {
			t.Fatalf("create code=%d body=%s", code, string(body))
		}

		code, body = mustJSON(t, client, http.MethodPost, baseURL+"/api/sim/tick", map[string]any{"ticks": 2})
		if code != http.StatusOK {
			t.Fatalf("tick code=%d body=%s", code, string(body))
		}
		res := decode(t, body)
		if res["to_tick"].(float64) < 2 {
			t.Fatalf("expected to_tick >= 2, body=%s", string(body))
		}
	})

	t.Run("clouds and events", func(t *testing.T) {
		code, body := mustJSON(t, client, http.MethodGet, baseURL+"/api/sim/clouds", nil)
		if code != http.StatusOK {
			t.Fatalf("clouds code=%d body=%s", code, string(body))
		}
		seen := map[float64]bool{}
		for _, c := range asSlice(decode(t, body)["clouds"]) {
			loc := asMap(c)["location"].(float64)
			if seen[loc] {
				t.Fatalf("two clouds share tile %v", loc)
			}
			seen[loc] = true
		}

		code, body = mustJSON(t, client, http.MethodGet, baseURL+"/api/sim/events?limit=20", nil)
		if code != http.StatusOK {
			t.Fatalf("events code=%d body=%s", code, string(body))
		}
		if len(asSlice(decode(t, body)["events"])) > 20 {
			t.Fatalf("limit not applied, body=%s", string(body))
		}
	})

	t.Run("rejects bad requests", func(t *testing.T) {
		code, body := mustJSON(t, client, http.MethodPost, baseURL+"/api/sim/tick", map[string]any{"ticks": -1})
		if code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", code, string(body))
		}
		code, body = mustJSON(t, client, http.MethodGet, baseURL+"/api/sim/tiles/999999", nil)
		if code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d body=%s", code, string(body))
		}
	})

	t.Run("ops kpi", func(t *testing.T) {
		code, body := mustJSON(t, client, http.MethodGet, baseURL+"/ops/kpi", nil)
		if code != http.StatusOK {
			t.Fatalf("kpi code=%d body=%s", code, string(body))
		}
		if _, ok := decode(t, body)["ticks"]; !ok {
			t.Fatalf("expected ticks counter, body=%s", string(body))
		}
	})
}

func mustJSON(t *testing.T, client *http.Client, method, url string, body map[string]any) (int, []byte) {
	t.Helper()
	status, b, err := doRequest(client, method, url, body)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return status, b
}

func doRequest(client *http.Client, method, url string, body map[string]any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, b, nil
}

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, string(body))
	}
	return m
}

func envOr(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}
