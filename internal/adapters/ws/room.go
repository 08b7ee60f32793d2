package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/linguamates/callrelay/internal/domain"
)

func (ctl *Controller) handleJoin(sid domain.SocketID, c *wsConn, data []byte) {
	var p struct {
		Type      string `json:"type"`
		SessionID string `json:"sessionId"`
		UserID    string `json:"userId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad join payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	room := domain.RoomID(p.SessionID)
	if err := domain.ValidateRoomID(room); err != nil {
		ctl.sendError(c, err.Error())
		return
	}
	ctl.Coord.Join(room, sid, p.UserID)
}

func (ctl *Controller) handleLeave(sid domain.SocketID, c *wsConn, data []byte) {
	var p struct {
		Type      string `json:"type"`
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad leave payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Coord.Leave(domain.RoomID(p.SessionID), sid)
}
