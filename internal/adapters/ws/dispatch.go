package ws

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/linguamates/callrelay/internal/domain"
)

// dispatch routes one inbound frame. A panic in any handler is trapped
// here so one participant's malformed traffic can never take down the
// sessions of other rooms.
func (ctl *Controller) dispatch(ctx context.Context, sid domain.SocketID, c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("module", "ws").Str("sid", string(sid)).Str("event", env.Type).Msg("handler panic recovered")
		}
	}()

	switch env.Type {
	case "joinCall":
		ctl.handleJoin(sid, c, data)
	case "leaveCall":
		ctl.handleLeave(sid, c, data)
	case "callSignal":
		ctl.handleSignal(sid, c, data)
	case "callMessage":
		ctl.handleMessage(sid, c, data)
	case "audioChunk":
		ctl.handleAudioChunk(ctx, sid, c, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown event")
	}
}
