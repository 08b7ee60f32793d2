package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/linguamates/callrelay/internal/app"
	"github.com/linguamates/callrelay/internal/core"
	"github.com/linguamates/callrelay/internal/domain"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller upgrades call connections and dispatches their events to
// the coordinator. One read pump goroutine per connection handles each
// inbound event to completion, which is what keeps per-connection
// ordering.
type Controller struct {
	Coord    *app.Coordinator
	Pipeline *app.Pipeline
	Table    *Table

	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(coord *app.Coordinator, pipeline *app.Pipeline, table *Table, readLimit int64, pingPeriod time.Duration) *Controller {
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &Controller{
		Coord:      coord,
		Pipeline:   pipeline,
		Table:      table,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
	}
}

// HandleCall runs for the lifetime of one websocket. The socket id is
// minted here: it identifies the connection, not the user.
func (ctl *Controller) HandleCall(ctx context.Context, c *gin.Context) {
	sid := domain.SocketID(uuid.NewString())

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "ws").Str("sid", string(sid)).Msg("new call connection")

	wc := newWSConn(conn)
	ctl.Table.Add(sid, wc)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go ctl.writePump(ctx, wc)
	ctl.readPump(ctx, sid, wc)

	// transport-level disconnect: leave whatever room the socket held
	ctl.Table.Remove(sid)
	ctl.Coord.Disconnect(sid)
	wc.Close()
	log.Info().Str("module", "ws").Str("sid", string(sid)).Msg("call connection closed")
}

func (ctl *Controller) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("sendJSON marshal")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Debug().Err(err).Str("module", "ws").Msg("sendJSON dropped")
	}
}

func (ctl *Controller) sendError(c *wsConn, msg string) {
	ctl.sendJSON(c, map[string]string{"type": core.EventError, "error": msg})
}
