package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/anchorage/pkg/pipeline"
)

const menuScene = `
[scene]
virtual_width = 1280
virtual_height = 720

[[nodes]]
id = "background"
anchor = "Middle"
stretch = { x_margin = 0.0, y_margin = 0.0 }

[[nodes.nodes]]
id = "title"
kind = "label"
anchor = "Middle"
offset = [0.0, 50.0]
size = [1280.0, 650.0]
opaque = true
text = "Breakout!"
font_size = 75.0
color = [1.0, 1.0, 1.0, 1.0]
`

func testServer() *httptest.Server {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	return httptest.NewServer(NewServer(runner, logger).Router())
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestHealthz(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if id := resp.Header.Get("X-Request-ID"); id == "" {
		t.Error("X-Request-ID header should be set")
	}
}

func TestLayoutEndpoint(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/v1/layout", map[string]any{"scene": menuScene})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body: %s", resp.StatusCode, body)
	}

	var out struct {
		SceneHash    string          `json:"scene_hash"`
		LayoutHash   string          `json:"layout_hash"`
		Layout       json.RawMessage `json:"layout"`
		LayoutErrors []string        `json:"layout_errors"`
		RequestID    string          `json:"request_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if out.SceneHash == "" || out.LayoutHash == "" {
		t.Error("content hashes should be set")
	}
	if out.RequestID == "" {
		t.Error("request_id should be set")
	}
	if len(out.LayoutErrors) != 0 {
		t.Errorf("unexpected layout errors: %v", out.LayoutErrors)
	}
	if !strings.Contains(string(out.Layout), `"y": 85`) {
		t.Error("layout should contain the resolved title rect")
	}
}

func TestLayoutEndpointRejectsBadScene(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	// Missing scene
	resp := postJSON(t, srv.URL+"/v1/layout", map[string]any{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty scene: status = %d, want 400", resp.StatusCode)
	}

	// Widget without an anchor
	resp = postJSON(t, srv.URL+"/v1/layout", map[string]any{
		"scene": "[[nodes]]\nid = \"panel\"\n",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing anchor: status = %d, want 400", resp.StatusCode)
	}
	var out struct {
		Error     string `json:"error"`
		RequestID string `json:"request_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if !strings.Contains(out.Error, "MISSING_ANCHOR") {
		t.Errorf("error should carry the code: %s", out.Error)
	}
}

func TestHitTestEndpoint(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	// Center of the viewport is inside the opaque title
	resp := postJSON(t, srv.URL+"/v1/hittest", map[string]any{
		"scene": menuScene, "x": 640, "y": 360,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body: %s", resp.StatusCode, body)
	}

	var out struct {
		Hit  bool   `json:"hit"`
		ID   string `json:"id"`
		Rect *struct {
			X, Y, Width, Height float64
		} `json:"rect"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Hit || out.ID != "title" {
		t.Errorf("hit = %v id = %q, want hit on title", out.Hit, out.ID)
	}
	if out.Rect == nil || out.Rect.Y != 85 {
		t.Errorf("rect = %+v, want y 85", out.Rect)
	}
}

func TestHitTestEndpointMiss(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	// Above the title, only the non-opaque background is there
	resp := postJSON(t, srv.URL+"/v1/hittest", map[string]any{
		"scene": menuScene, "x": 640, "y": 10,
	})
	defer resp.Body.Close()

	var out struct {
		Hit bool   `json:"hit"`
		ID  string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Hit {
		t.Errorf("hit = true, want miss above the title")
	}
}
