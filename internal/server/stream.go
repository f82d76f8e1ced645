package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ubc/tlef-engeai-sub007/internal/artifact"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamRequest is the incoming WebSocket message format. The client
// sends the full accumulated buffer of the in-flight bot message with
// each "chunk"; "final" closes the message and runs the complete
// pipeline over the raw text.
type streamRequest struct {
	Type      string `json:"type"` // "chunk" or "final"
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

// streamResponse is the outgoing WebSocket message format.
type streamResponse struct {
	Type         string        `json:"type"` // "processed", "final" or "error"
	MessageID    string        `json:"message_id"`
	Content      string        `json:"content"`
	HasArtifacts bool          `json:"has_artefacts,omitempty"`
	Detected     []apiArtifact `json:"detected,omitempty"`
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read", "error", err)
			}
			return
		}

		var req streamRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendStreamError(conn, "", "invalid message format")
			continue
		}

		if req.MessageID == "" {
			req.MessageID = uuid.NewString()
		}

		switch req.Type {
		case "chunk":
			s.handleChunk(conn, req)
		case "final":
			s.handleFinal(conn, r, req)
		default:
			s.sendStreamError(conn, req.MessageID, "unknown message type: "+req.Type)
		}
	}
}

func (s *Server) handleChunk(conn *websocket.Conn, req streamRequest) {
	var detected []apiArtifact
	result := s.pipeline.ProcessChunk(req.Content, req.MessageID, func(a *artifact.Artifact) {
		detected = append(detected, toAPI(a))
	})

	s.sendStreamResponse(conn, streamResponse{
		Type:         "processed",
		MessageID:    req.MessageID,
		Content:      result.ProcessedText,
		HasArtifacts: result.HasArtifacts,
		Detected:     detected,
	})
}

// handleFinal runs the full pipeline over the completed buffer once
// streaming ends, so the final HTML gets markdown, highlighting and
// confidence checks, not just placeholder substitution. The client
// sends its current processed buffer; placeholders already substituted
// mid-stream carry no delimiters and pass through untouched.
func (s *Server) handleFinal(conn *websocket.Conn, r *http.Request, req streamRequest) {
	html, err := s.pipeline.RenderText(req.Content, req.MessageID)
	if err != nil {
		s.sendStreamError(conn, req.MessageID, "rendering failed: "+err.Error())
		return
	}

	artifacts := s.registry.ByMessage(req.MessageID)
	s.recordRender(r.Context(), req.MessageID, artifacts, true)

	resp := streamResponse{
		Type:         "final",
		MessageID:    req.MessageID,
		Content:      html,
		HasArtifacts: len(artifacts) > 0,
	}
	for _, a := range artifacts {
		resp.Detected = append(resp.Detected, toAPI(a))
	}
	s.sendStreamResponse(conn, resp)
}

func (s *Server) sendStreamResponse(conn *websocket.Conn, resp streamResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		s.logger.Warn("websocket write", "error", err)
	}
}

func (s *Server) sendStreamError(conn *websocket.Conn, messageID, message string) {
	s.sendStreamResponse(conn, streamResponse{
		Type:      "error",
		MessageID: messageID,
		Content:   message,
	})
}
