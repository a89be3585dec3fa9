// Package websocket pushes conversation turns and status changes to
// connected UI clients so they never have to poll.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/deskbothq/deskbot/internal/agent"
	"github.com/deskbothq/deskbot/internal/events"
	"github.com/deskbothq/deskbot/internal/status"
	"github.com/deskbothq/deskbot/internal/svc"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server binds to loopback only; browser pages served from file://
	// or localhost dev ports are all legitimate origins here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Frame is the envelope for every pushed event.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Handler upgrades the connection and streams events until the client
// disconnects.
func Handler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Errorf("websocket: upgrade: %v", err)
			return
		}

		c := &client{id: uuid.New().String()[:8], conn: conn}
		logx.Infof("websocket: [%s] client connected", c.id)
		c.run(svcCtx.Subject)
		logx.Infof("websocket: [%s] client disconnected", c.id)
	}
}

type client struct {
	id   string
	conn *websocket.Conn

	// Gorilla allows one concurrent writer; event handlers and the close
	// path both write.
	writeMu sync.Mutex
}

func (c *client) run(subject *events.Subject) {
	turnSub := events.Subscribe(subject, events.TopicTurnCreated, func(_ context.Context, turn agent.Turn) error {
		return c.write(Frame{Type: "turn", Payload: turn})
	})
	defer turnSub.Cancel()

	statusSub := events.Subscribe(subject, events.TopicStatusChanged, func(_ context.Context, snap status.Snapshot) error {
		return c.write(Frame{Type: "status", Payload: snap})
	})
	defer statusSub.Cancel()

	defer c.conn.Close()

	// Clients never send application frames; the read loop only notices
	// disconnects and answers control frames.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) write(frame Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(frame)
}
