package core

import (
	"context"
	"errors"

	"github.com/linguamates/callrelay/internal/domain"
)

// Frame is a marshaled outbound payload.
type Frame []byte

// ErrBackpressure is returned by a sink when the target's send buffer is
// full. The relay treats it the same as a vanished connection.
var ErrBackpressure = errors.New("backpressure")

// ErrEmptySegment marks audio the transcription service considered
// unusable (silence between utterances). Expected, not exceptional.
var ErrEmptySegment = errors.New("empty audio segment")

// ConnectionSink abstracts fire-and-forget delivery to live connections.
// Owned by the transport adapter; the coordinator never learns whether a
// send actually reached the peer.
type ConnectionSink interface {
	TrySend(sid domain.SocketID, f Frame) error
}

// TranscriptSegment is one timestamped span of a verbose transcription.
type TranscriptSegment struct {
	Start float64
	End   float64
	Text  string
}

// Transcriber converts a short audio file to text, constrained to a
// single source language.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, lang string) (string, error)
	TranscribeSegments(ctx context.Context, audioPath, lang string) ([]TranscriptSegment, error)
}

// Translator converts text between two languages.
type Translator interface {
	Translate(ctx context.Context, text, fromLang, toLang string) (string, error)
}

// SegmentStore holds an audio segment on disk just long enough to hand it
// to a speech service. cleanup must be safe to call on every exit path.
type SegmentStore interface {
	Put(data []byte, ext string) (path string, cleanup func(), err error)
}
