package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ubc/tlef-engeai-sub007/internal/artifact"
	"github.com/ubc/tlef-engeai-sub007/internal/confidence"
	"github.com/ubc/tlef-engeai-sub007/internal/panel"
)

// apiArtifact is the wire representation of an artifact.
type apiArtifact struct {
	ID         string    `json:"id"`
	MessageID  string    `json:"message_id"`
	SourceCode string    `json:"source_code"`
	IsOpen     bool      `json:"is_open"`
	Streaming  bool      `json:"streaming"`
	CreatedAt  time.Time `json:"created_at"`
}

func toAPI(a *artifact.Artifact) apiArtifact {
	return apiArtifact{
		ID:         a.ID,
		MessageID:  a.MessageID,
		SourceCode: a.SourceCode,
		IsOpen:     a.IsOpen,
		Streaming:  a.Streaming,
		CreatedAt:  a.CreatedAt,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

type renderRequest struct {
	MessageID string `json:"message_id"`
	Text      string `json:"text"`
}

type renderResponse struct {
	MessageID string        `json:"message_id"`
	HTML      string        `json:"html"`
	Artifacts []apiArtifact `json:"artefacts"`
}

func (s *Server) handleRenderMessage(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.MessageID == "" {
		req.MessageID = uuid.NewString()
	}

	html, err := s.pipeline.RenderText(req.Text, req.MessageID)
	if err != nil {
		s.logger.Error("rendering message", "message_id", req.MessageID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "rendering failed: "+err.Error())
		return
	}

	artifacts := s.registry.ByMessage(req.MessageID)
	s.recordRender(r.Context(), req.MessageID, artifacts, false)

	resp := renderResponse{MessageID: req.MessageID, HTML: html, Artifacts: make([]apiArtifact, 0, len(artifacts))}
	for _, a := range artifacts {
		resp.Artifacts = append(resp.Artifacts, toAPI(a))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// recordRender persists the render outcome. Persistence failures are
// logged, not surfaced: the in-memory registry is the source of truth.
func (s *Server) recordRender(ctx context.Context, messageID string, artifacts []*artifact.Artifact, streaming bool) {
	if s.db == nil {
		return
	}
	streamed := 0
	if streaming {
		streamed = 1
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO rendered_messages (message_id, artifact_count, streaming)
		VALUES (?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET artifact_count = excluded.artifact_count`,
		messageID, len(artifacts), streamed,
	); err != nil {
		s.logger.Warn("recording rendered message", "message_id", messageID, "error", err)
	}
	for _, a := range artifacts {
		if _, err := s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO artifacts (id, message_id, source_code, streaming)
			VALUES (?, ?, ?, ?)`,
			a.ID, a.MessageID, a.SourceCode, boolToInt(a.Streaming),
		); err != nil {
			s.logger.Warn("recording artifact", "id", a.ID, "error", err)
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	var artifacts []*artifact.Artifact
	if messageID := r.URL.Query().Get("message"); messageID != "" {
		artifacts = s.registry.ByMessage(messageID)
	} else {
		artifacts = s.registry.All()
	}

	out := make([]apiArtifact, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, toAPI(a))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	a, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "artefact not found")
		return
	}
	s.writeJSON(w, http.StatusOK, toAPI(a))
}

// apiPanel is the wire representation of the on-screen panel.
type apiPanel struct {
	ArtifactID string `json:"artefact_id"`
	Phase      string `json:"phase"`
	Markup     string `json:"markup"`
	Diagram    string `json:"diagram"`
	Transform  string `json:"transform,omitempty"`
}

func (s *Server) panelState(p *panel.Panel) *apiPanel {
	if p == nil || s.controller == nil {
		return nil
	}
	ap := &apiPanel{
		ArtifactID: p.ArtifactID,
		Phase:      string(s.controller.Phase()),
		Markup:     p.Markup,
		Diagram:    p.Diagram,
	}
	if p.Viewport != nil {
		ap.Transform = p.Viewport.Transform()
	}
	return ap
}

func (s *Server) handleOpenArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.controller == nil {
		a, ok := s.registry.Open(id)
		if !ok {
			s.writeError(w, http.StatusNotFound, "artefact not found")
			return
		}
		s.writeJSON(w, http.StatusOK, toAPI(a))
		return
	}

	p := s.controller.Open(r.Context(), id)
	if p == nil {
		s.writeError(w, http.StatusNotFound, "artefact not found")
		return
	}
	a, err := s.registry.Get(id)
	if err != nil {
		// Open succeeded, so the id resolves; the demo id is registered
		// on first open.
		s.writeError(w, http.StatusNotFound, "artefact not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"artefact": toAPI(a),
		"panel":    s.panelState(p),
	})
}

func (s *Server) handleCloseArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	open := s.registry.OpenID()
	if open != "" && open != id {
		s.writeError(w, http.StatusConflict, "a different artefact is open")
		return
	}
	if s.controller == nil {
		closed := s.registry.Close()
		if closed == nil {
			s.writeJSON(w, http.StatusOK, map[string]bool{"was_open": false})
			return
		}
		s.writeJSON(w, http.StatusOK, toAPI(closed))
		return
	}

	if open == "" {
		s.writeJSON(w, http.StatusOK, map[string]bool{"was_open": false})
		return
	}
	a, err := s.registry.Get(open)
	s.controller.Close()
	if err != nil {
		s.writeJSON(w, http.StatusOK, map[string]bool{"was_open": false})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"artefact": toAPI(a),
		"phase":    string(s.controller.Phase()),
	})
}

func (s *Server) handleToggleArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.controller == nil {
		a, opened := s.registry.Toggle(id)
		if a == nil {
			s.writeError(w, http.StatusNotFound, "artefact not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{
			"artefact": toAPI(a),
			"open":     opened,
		})
		return
	}

	p := s.controller.Activate(r.Context(), id)
	a, err := s.registry.Get(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "artefact not found")
		return
	}
	resp := map[string]any{
		"artefact": toAPI(a),
		"open":     p != nil,
	}
	if p != nil {
		resp["panel"] = s.panelState(p)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.registry.Get(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "artefact not found")
		return
	}
	if s.exporter == nil {
		s.writeError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}

	if s.renderer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no diagram renderer available")
		return
	}
	svg, err := s.renderer.Render(r.Context(), a.SourceCode)
	if err != nil {
		s.logger.Warn("rendering for export", "id", id, "error", err)
		s.writeError(w, http.StatusServiceUnavailable, "diagram rendering failed: "+err.Error())
		return
	}

	var path string
	switch want := r.URL.Query().Get("format"); want {
	case "", "png":
		path, err = s.exporter.Export(svg, a.ID)
	case "svg":
		path, err = s.exporter.ExportSVG(svg, a.ID)
	default:
		s.writeError(w, http.StatusBadRequest, "format must be png or svg")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "export failed: "+err.Error())
		return
	}

	format := "png"
	if strings.HasSuffix(path, ".svg") {
		format = "svg"
	}
	if s.db != nil {
		if _, err := s.db.ExecContext(r.Context(), `
			INSERT INTO exports (id, artifact_id, format, path) VALUES (?, ?, ?, ?)`,
			uuid.NewString(), a.ID, format, path,
		); err != nil {
			s.logger.Warn("recording export", "id", a.ID, "error", err)
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"artefact_id": a.ID,
		"format":      format,
		"path":        path,
	})
}

type confidenceRequest struct {
	MessageID  string `json:"message_id"`
	Topic      string `json:"topic"`
	Understood bool   `json:"understood"`
}

func (s *Server) handleConfidence(w http.ResponseWriter, r *http.Request) {
	var req confidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Topic == "" {
		s.writeError(w, http.StatusBadRequest, "topic is required")
		return
	}
	if s.confidence == nil {
		s.writeError(w, http.StatusServiceUnavailable, "confidence store is not configured")
		return
	}

	stored, err := s.confidence.Record(r.Context(), confidence.Response{
		MessageID:  req.MessageID,
		Topic:      req.Topic,
		Understood: req.Understood,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "recording response: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, stored)
}
