package ws

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/linguamates/callrelay/internal/core"
	"github.com/linguamates/callrelay/internal/domain"
)

// handleSignal relays an opaque WebRTC payload. The signal field is
// kept as raw bytes end to end; the server neither parses nor mutates
// offers, answers, or candidates.
func (ctl *Controller) handleSignal(sid domain.SocketID, c *wsConn, data []byte) {
	var p struct {
		Type           string          `json:"type"`
		SessionID      string          `json:"sessionId"`
		Signal         json.RawMessage `json:"signal"`
		TargetSocketID string          `json:"targetSocketId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad signal payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if p.SessionID == "" || len(p.Signal) == 0 {
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Coord.RelaySignal(domain.RoomID(p.SessionID), sid, p.Signal, domain.SocketID(p.TargetSocketID))
}

func (ctl *Controller) handleMessage(sid domain.SocketID, c *wsConn, data []byte) {
	var p struct {
		Type      string `json:"type"`
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad message payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Coord.RelayMessage(domain.RoomID(p.SessionID), sid, p.Message)
}

// handleAudioChunk hands one recorded window to the pipeline. It runs
// on the connection's read pump, so a participant's segments are
// processed strictly in the order they were recorded.
func (ctl *Controller) handleAudioChunk(ctx context.Context, sid domain.SocketID, c *wsConn, data []byte) {
	var p struct {
		Type         string `json:"type"`
		SessionID    string `json:"sessionId"`
		AudioBlob    string `json:"audioBlob"`
		FromLanguage string `json:"fromLanguage"`
		ToLanguage   string `json:"toLanguage"`
		MimeType     string `json:"mimeType"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad audio payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	room := domain.RoomID(p.SessionID)
	if !ctl.Coord.Registry().Contains(room, sid) {
		log.Debug().Str("module", "ws").Str("sid", string(sid)).Str("room", p.SessionID).Msg("audio chunk from non-member dropped")
		return
	}
	audio, err := base64.StdEncoding.DecodeString(p.AudioBlob)
	if err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("audio chunk not valid base64")
		ctl.sendError(c, "bad_audio")
		return
	}
	ctl.Pipeline.HandleSegment(ctx, room, sid, core.AudioSegment{
		Data:         audio,
		FromLanguage: p.FromLanguage,
		ToLanguage:   p.ToLanguage,
		MimeType:     p.MimeType,
	})
}

func (ctl *Controller) handlePing(c *wsConn) {
	ctl.sendJSON(c, map[string]string{"type": core.EventPong})
}
