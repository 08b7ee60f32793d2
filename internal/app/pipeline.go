package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/linguamates/callrelay/internal/core"
	"github.com/linguamates/callrelay/internal/domain"
)

// DefaultSegmentTimeout bounds one transcription+translation round trip.
// An unbounded hang would pin the participant's translation slot forever.
const DefaultSegmentTimeout = 10 * time.Second

// Pipeline carries one audio segment from a participant through the
// speech collaborators and back to the room as subtitles.
//
// Failure never escapes a single segment: the temp file is removed on
// every exit path, errors reach only the originator, and the client's
// recording loop simply sends the next window.
type Pipeline struct {
	coord   *Coordinator
	store   core.SegmentStore
	stt     core.Transcriber
	mt      core.Translator
	timeout time.Duration
	metrics *Metrics
}

func NewPipeline(coord *Coordinator, store core.SegmentStore, stt core.Transcriber, mt core.Translator, timeout time.Duration, m *Metrics) *Pipeline {
	if timeout <= 0 {
		timeout = DefaultSegmentTimeout
	}
	return &Pipeline{coord: coord, store: store, stt: stt, mt: mt, timeout: timeout, metrics: m}
}

// HandleSegment processes one recorded window. It blocks the caller for
// at most the configured timeout; per-connection events stay ordered
// because the transport handles one inbound event at a time.
func (p *Pipeline) HandleSegment(ctx context.Context, room domain.RoomID, from domain.SocketID, seg core.AudioSegment) {
	if len(seg.Data) == 0 {
		// Silence between utterances, not an error.
		log.Debug().Str("module", "app.pipeline").Str("room", string(room)).Msg("empty segment skipped")
		p.metrics.Segments.WithLabelValues(SegmentEmpty).Inc()
		return
	}

	path, cleanup, err := p.store.Put(seg.Data, extForMime(seg.MimeType))
	if err != nil {
		log.Error().Err(err).Str("module", "app.pipeline").Str("room", string(room)).Msg("store segment")
		p.fail(from, "could not store audio segment")
		return
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	fromLang := domain.NormalizeLanguage(seg.FromLanguage)
	toLang := domain.NormalizeLanguage(seg.ToLanguage)

	original, err := p.stt.Transcribe(ctx, path, fromLang)
	if err != nil {
		if errors.Is(err, core.ErrEmptySegment) {
			log.Debug().Str("module", "app.pipeline").Str("room", string(room)).Msg("unusable segment skipped")
			p.metrics.Segments.WithLabelValues(SegmentEmpty).Inc()
			return
		}
		log.Warn().Err(err).Str("module", "app.pipeline").Str("room", string(room)).Str("event", "audioChunk").Msg("transcription failed")
		p.fail(from, "transcription failed")
		return
	}

	original = strings.TrimSpace(original)
	if original == "" {
		log.Debug().Str("module", "app.pipeline").Str("room", string(room)).Msg("blank transcript skipped")
		p.metrics.Segments.WithLabelValues(SegmentEmpty).Inc()
		return
	}

	translated, err := p.mt.Translate(ctx, original, fromLang, toLang)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.pipeline").Str("room", string(room)).Str("event", "audioChunk").Msg("translation failed")
		p.fail(from, "translation failed")
		return
	}

	p.coord.BroadcastTranslation(room, core.Translation{
		Type:         core.EventTranslation,
		Original:     original,
		Translated:   translated,
		FromLanguage: fromLang,
		ToLanguage:   toLang,
	})
	p.metrics.Segments.WithLabelValues(SegmentOK).Inc()
}

func (p *Pipeline) fail(from domain.SocketID, msg string) {
	p.metrics.Segments.WithLabelValues(SegmentError).Inc()
	p.coord.NotifySegmentError(from, msg)
}

// extForMime maps the recorder's MIME type to a file extension the
// transcription API recognizes. The browser records webm/opus.
func extForMime(mime string) string {
	switch {
	case strings.Contains(mime, "ogg"):
		return ".ogg"
	case strings.Contains(mime, "mp4"):
		return ".mp4"
	case strings.Contains(mime, "wav"):
		return ".wav"
	default:
		return ".webm"
	}
}
