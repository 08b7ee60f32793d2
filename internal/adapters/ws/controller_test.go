package ws

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguamates/callrelay/internal/app"
	"github.com/linguamates/callrelay/internal/core"
	"github.com/linguamates/callrelay/internal/segments"
)

type echoTranscriber struct{}

func (echoTranscriber) Transcribe(ctx context.Context, path, lang string) (string, error) {
	return "hello from " + lang, nil
}

func (echoTranscriber) TranscribeSegments(ctx context.Context, path, lang string) ([]core.TranscriptSegment, error) {
	return nil, errors.New("not used")
}

type echoTranslator struct{}

func (echoTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	return "(" + to + ") " + text, nil
}

func newCallServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := segments.NewStore(t.TempDir())
	require.NoError(t, err)

	metrics := app.NewMetrics(prometheus.NewRegistry())
	table := NewTable()
	coord := app.NewCoordinator(app.NewRegistry(), table, metrics)
	pipeline := app.NewPipeline(coord, store, echoTranscriber{}, echoTranslator{}, time.Second, metrics)
	ctl := NewController(coord, pipeline, table, 1<<20, 50*time.Second)

	r := gin.New()
	r.GET("/ws/call", func(c *gin.Context) {
		ctl.HandleCall(c.Request.Context(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/call"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, b))
}

func read(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

// readType skips events until one of the wanted type shows up.
func readType(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		m := read(t, conn)
		if m["type"] == typ {
			return m
		}
	}
	t.Fatalf("never received event of type %q", typ)
	return nil
}

func assertSilent(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "expected no traffic")
}

func TestCallRoundTrip(t *testing.T) {
	srv := newCallServer(t)

	a := dial(t, srv)
	send(t, a, map[string]any{"type": "joinCall", "sessionId": "s1", "userId": "alice"})
	up := readType(t, a, core.EventParticipantUpdate)
	require.EqualValues(t, 1, up["count"])
	aSid := up["participants"].([]any)[0].(string)

	b := dial(t, srv)
	send(t, b, map[string]any{"type": "joinCall", "sessionId": "s1", "userId": "bob"})

	up = readType(t, b, core.EventParticipantUpdate)
	require.EqualValues(t, 2, up["count"])
	up = readType(t, a, core.EventParticipantUpdate)
	require.EqualValues(t, 2, up["count"])

	// broadcast signal from a reaches b, annotated with a's socket id
	send(t, a, map[string]any{
		"type":      "callSignal",
		"sessionId": "s1",
		"signal":    map[string]any{"type": "offer"},
	})
	sig := readType(t, b, core.EventCallSignal)
	assert.Equal(t, aSid, sig["fromSocketId"])
	assert.Equal(t, map[string]any{"type": "offer"}, sig["signal"])

	// and nothing bounces back to a
	assertSilent(t, a)
}

func TestDisconnectNotifiesRemainingMembers(t *testing.T) {
	srv := newCallServer(t)

	a := dial(t, srv)
	send(t, a, map[string]any{"type": "joinCall", "sessionId": "s1", "userId": "alice"})
	readType(t, a, core.EventParticipantUpdate)

	b := dial(t, srv)
	send(t, b, map[string]any{"type": "joinCall", "sessionId": "s1", "userId": "bob"})
	readType(t, b, core.EventParticipantUpdate)

	up := readType(t, a, core.EventParticipantUpdate)
	require.EqualValues(t, 2, up["count"])

	// b vanishes without an explicit leaveCall
	b.Close()

	up = readType(t, a, core.EventParticipantUpdate)
	assert.EqualValues(t, 1, up["count"])
}

func TestAudioChunkProducesTranslationForRoom(t *testing.T) {
	srv := newCallServer(t)

	a := dial(t, srv)
	send(t, a, map[string]any{"type": "joinCall", "sessionId": "s1", "userId": "alice"})
	readType(t, a, core.EventParticipantUpdate)

	b := dial(t, srv)
	send(t, b, map[string]any{"type": "joinCall", "sessionId": "s1", "userId": "bob"})
	readType(t, b, core.EventParticipantUpdate)
	readType(t, a, core.EventParticipantUpdate)

	send(t, a, map[string]any{
		"type":         "audioChunk",
		"sessionId":    "s1",
		"audioBlob":    base64.StdEncoding.EncodeToString([]byte("opus-bytes")),
		"fromLanguage": "en-US",
		"toLanguage":   "es",
		"mimeType":     "audio/webm;codecs=opus",
	})

	for _, conn := range []*websocket.Conn{a, b} {
		tr := readType(t, conn, core.EventTranslation)
		assert.Equal(t, "hello from en", tr["original"])
		assert.Equal(t, "(es) hello from en", tr["translated"])
	}
}

func TestPingPong(t *testing.T) {
	srv := newCallServer(t)

	a := dial(t, srv)
	send(t, a, map[string]any{"type": "ping"})
	m := readType(t, a, core.EventPong)
	assert.Equal(t, "pong", m["type"])
}

func TestMalformedEventDoesNotKillConnection(t *testing.T) {
	srv := newCallServer(t)

	a := dial(t, srv)
	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte("not json")))
	m := readType(t, a, core.EventError)
	assert.NotEmpty(t, m["error"])

	// the connection still works afterwards
	send(t, a, map[string]any{"type": "joinCall", "sessionId": "s1", "userId": "alice"})
	up := readType(t, a, core.EventParticipantUpdate)
	assert.EqualValues(t, 1, up["count"])
}

func TestJoinRejectsEmptyRoom(t *testing.T) {
	srv := newCallServer(t)

	a := dial(t, srv)
	send(t, a, map[string]any{"type": "joinCall", "sessionId": "", "userId": "alice"})
	m := readType(t, a, core.EventError)
	assert.Equal(t, "room id empty", m["error"])
}
