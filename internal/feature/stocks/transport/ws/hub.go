// Package ws はスナップショット更新をWebSocketで配信します。
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"alpha_sentiment/internal/feature/stocks/domain/entity"
	"alpha_sentiment/internal/feature/stocks/usecase"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub は接続中のクライアントへ更新イベントをブロードキャストします。
// クライアント集合はRunのgoroutineだけが触ります。
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan entity.SnapshotEvent
	clients    map[*client]struct{}
	done       chan struct{}

	mu     sync.RWMutex
	latest *entity.SnapshotEvent
}

var _ usecase.EventPublisher = (*Hub)(nil)

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan entity.SnapshotEvent
}

// NewHub は Hub を生成します。Runを起動するまで配信は行われません。
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan entity.SnapshotEvent, 64),
		clients:    make(map[*client]struct{}),
		done:       make(chan struct{}),
	}
}

// Run はctxが取り消されるまでハブのループを回します。
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			// 接続時に最新の状態を送る
			if ev := h.Latest(); ev != nil {
				c.send <- *ev
			}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case ev := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- ev:
				default:
					// 遅いクライアントは切断してハブを止めない
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Publish は更新イベントを全クライアントへ送ります。バッファが満杯の場合は破棄します。
func (h *Hub) Publish(ev entity.SnapshotEvent) {
	h.mu.Lock()
	h.latest = &ev
	h.mu.Unlock()

	select {
	case h.broadcast <- ev:
	default:
		slog.Warn("websocket broadcast buffer full, dropping event", "type", ev.Type)
	}
}

// Latest は最後に配信したイベントを返します。
func (h *Hub) Latest() *entity.SnapshotEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return nil
	}
	ev := *h.latest
	return &ev
}

// ServeWS はWebSocket接続を受け付けます。
//
// エンドポイント例:
// GET /api/ws
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("failed to upgrade websocket", "error", err)
		return
	}

	cl := &client{hub: h, conn: conn, send: make(chan entity.SnapshotEvent, sendBuffer)}
	select {
	case h.register <- cl:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go cl.writePump()
	go cl.readPump()
}

// readPump はクライアントからのメッセージを読み捨て、切断を検知します。
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump はイベントをJSONで書き出し、定期的にpingを送ります。
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
