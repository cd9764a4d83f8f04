package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/matzehuels/anchorage/pkg/errors"
	"github.com/matzehuels/anchorage/pkg/geometry"
	"github.com/matzehuels/anchorage/pkg/pipeline"
)

// layoutRequest is the body of POST /v1/layout.
type layoutRequest struct {
	Scene  string  `json:"scene"` // scene description, TOML
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// layoutResponse is the reply of POST /v1/layout. Layout carries the
// resolved rectangles in the same JSON shape the CLI's layout command
// writes to disk.
type layoutResponse struct {
	SceneHash    string          `json:"scene_hash"`
	LayoutHash   string          `json:"layout_hash"`
	Layout       json.RawMessage `json:"layout"`
	LayoutErrors []string        `json:"layout_errors,omitempty"`
	Cached       bool            `json:"cached"`
	RequestID    string          `json:"request_id"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if req.Scene == "" {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("scene is required"))
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Scene:   req.Scene,
		Width:   req.Width,
		Height:  req.Height,
		Formats: []string{pipeline.FormatJSON},
		Logger:  s.logger,
	})
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		SceneHash:    result.SceneHash,
		LayoutHash:   result.LayoutHash,
		Layout:       json.RawMessage(result.Artifacts[pipeline.FormatJSON]),
		LayoutErrors: result.LayoutErrors,
		Cached:       result.CacheInfo.LayoutHit,
		RequestID:    requestIDFrom(r.Context()),
	})
}

// hitTestRequest is the body of POST /v1/hittest.
type hitTestRequest struct {
	Scene  string  `json:"scene"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// hitTestResponse is the reply of POST /v1/hittest. ID and Rect are only
// present when Hit is true.
type hitTestResponse struct {
	Hit          bool      `json:"hit"`
	ID           string    `json:"id,omitempty"`
	Rect         *rectBody `json:"rect,omitempty"`
	LayoutErrors []string  `json:"layout_errors,omitempty"`
	RequestID    string    `json:"request_id"`
}

type rectBody struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleHitTest(w http.ResponseWriter, r *http.Request) {
	var req hitTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if req.Scene == "" {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("scene is required"))
		return
	}

	tree, _, layoutErrs, err := s.runner.Resolve(r.Context(), pipeline.Options{
		Scene:  req.Scene,
		Width:  req.Width,
		Height: req.Height,
		Logger: s.logger,
	})
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	resp := hitTestResponse{
		LayoutErrors: layoutErrs,
		RequestID:    requestIDFrom(r.Context()),
	}
	if id, ok := tree.HitTest(geometry.Point{X: req.X, Y: req.Y}); ok {
		n := tree.At(id)
		rect, _ := n.Resolved()
		resp.Hit = true
		resp.ID = n.Name
		resp.Rect = &rectBody{X: rect.X, Y: rect.Y, Width: rect.W, Height: rect.H}
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusFor maps pipeline errors to HTTP status codes. Configuration
// problems (bad scene, bad options) are the client's fault.
func statusFor(err error) int {
	if errors.IsConfiguration(err) {
		return http.StatusBadRequest
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidScene, errors.ErrCodeDuplicateID, errors.ErrCodeMissingAnchor, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
