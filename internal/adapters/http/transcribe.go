package http

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/linguamates/callrelay/internal/core"
	"github.com/linguamates/callrelay/internal/domain"
)

// Formats Whisper accepts for uploaded recordings.
var allowedExts = map[string]bool{
	".flac": true, ".m4a": true, ".mp3": true, ".mp4": true, ".mpeg": true,
	".mpga": true, ".oga": true, ".ogg": true, ".wav": true, ".webm": true,
}

// speakerPause is the silence length that suggests the other person
// started talking. Crude, but good enough for two-person lessons.
const speakerPause = 1.5

// TranscribeHandler serves whole-recording uploads (the speech feedback
// flow), as opposed to the live 3s segments on the socket. Both share
// the segment store and the transcriber.
type TranscribeHandler struct {
	Store core.SegmentStore
	STT   core.Transcriber
}

type transcribeForm struct {
	Language string `form:"language"`
}

func (h *TranscribeHandler) Handle(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExts[ext] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("unsupported file format %q; supported: flac, m4a, mp3, mp4, mpeg, mpga, oga, ogg, wav, webm", ext),
		})
		return
	}

	var form transcribeForm
	_ = c.ShouldBind(&form)
	lang := domain.NormalizeLanguage(form.Language)

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read upload"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read upload"})
		return
	}

	path, cleanup, err := h.Store.Put(data, ext)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("store upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store upload"})
		return
	}
	defer cleanup()

	segs, err := h.STT.TranscribeSegments(c.Request.Context(), path, lang)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("transcription failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an error occurred while transcribing the audio"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcript": splitSpeakers(segs)})
}

// splitSpeakers tags segments with alternating speakers whenever the
// gap between two segments exceeds speakerPause seconds.
func splitSpeakers(segs []core.TranscriptSegment) string {
	var sb strings.Builder
	speaker := "Speaker 1"
	for i, seg := range segs {
		if i > 0 {
			if seg.Start-segs[i-1].End > speakerPause {
				if speaker == "Speaker 1" {
					speaker = "Speaker 2"
				} else {
					speaker = "Speaker 1"
				}
			}
			sb.WriteString("\n")
		}
		sb.WriteString(speaker)
		sb.WriteString(": ")
		sb.WriteString(strings.TrimSpace(seg.Text))
	}
	return sb.String()
}
