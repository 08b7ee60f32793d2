package core

import (
	"encoding/json"

	"github.com/linguamates/callrelay/internal/domain"
)

// Outbound event types. The envelope is always {"type": ...}; clients
// switch on it the same way the server does for inbound traffic.
const (
	EventParticipantUpdate = "participantUpdate"
	EventCallSignal        = "callSignal"
	EventCallMessage       = "callMessage"
	EventTranslation       = "translation"
	EventTranslationError  = "translationError"
	EventPong              = "pong"
	EventError             = "error"
)

// ParticipantUpdate carries the full membership after a join or leave.
type ParticipantUpdate struct {
	Type         string            `json:"type"`
	Participants []domain.SocketID `json:"participants"`
	Count        int               `json:"count"`
}

// SignalOut wraps a relayed WebRTC payload with its originator. The
// signal itself is opaque and forwarded byte for byte.
type SignalOut struct {
	Type         string          `json:"type"`
	FromSocketID domain.SocketID `json:"fromSocketId"`
	Signal       json.RawMessage `json:"signal"`
}

// MessageOut is an in-call chat line relayed to the rest of the room.
type MessageOut struct {
	Type         string          `json:"type"`
	FromSocketID domain.SocketID `json:"fromSocketId"`
	Message      string          `json:"message"`
}

// Translation is the result of one audio segment handoff.
type Translation struct {
	Type         string `json:"type"`
	Original     string `json:"original"`
	Translated   string `json:"translated"`
	FromLanguage string `json:"fromLanguage"`
	ToLanguage   string `json:"toLanguage"`
}

// TranslationError is unicast to the participant whose segment failed.
type TranslationError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// AudioSegment is an inbound ~3s recording plus its language pair.
type AudioSegment struct {
	Data         []byte
	FromLanguage string
	ToLanguage   string
	MimeType     string
}
