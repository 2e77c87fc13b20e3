package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"storepulse/internal/domain"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMessageSize   = 64 * 1024
	dashboardTimeout = 10 * time.Second
)

// Incoming client events.
const (
	clientSubscribe    = "subscribe"
	clientUnsubscribe  = "unsubscribe"
	clientGetDashboard = "getDashboard"
	clientPing         = "ping"
)

type DashboardSource interface {
	GetDashboard(ctx context.Context) (*domain.DashboardMetrics, error)
}

type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type channelsRequest struct {
	Channels []string `json:"channels"`
}

// Handler upgrades /ws requests and serves one client per connection.
type Handler struct {
	broadcaster *Broadcaster
	dashboard   DashboardSource
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

func NewHandler(broadcaster *Broadcaster, dashboard DashboardSource, allowedOrigins []string, logger *zap.Logger) *Handler {
	return &Handler{
		broadcaster: broadcaster,
		dashboard:   dashboard,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

// originChecker allows requests without an Origin header (non-browser
// clients) and, when origins are configured, only those origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(set) == 0 {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	outbox := h.broadcaster.OnConnect(id)
	logger := h.logger.With(zap.String("connId", id))
	logger.Info("websocket client connected")

	h.broadcaster.Send(id, Message{
		Event: EventConnected,
		Data:  map[string]string{"id": id, "message": "Connected to analytics stream"},
	})

	go writePump(conn, outbox, logger)
	h.readPump(id, conn, logger)

	h.broadcaster.OnDisconnect(id)
	logger.Info("websocket client disconnected")
}

func (h *Handler) readPump(id string, conn *websocket.Conn, logger *zap.Logger) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("unexpected websocket close", zap.Error(err))
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.reply(id, EventError, map[string]string{"message": "malformed message"})
			continue
		}
		h.handle(id, msg)
	}
}

func (h *Handler) handle(id string, msg clientMessage) {
	switch msg.Event {
	case clientSubscribe, clientUnsubscribe:
		var req channelsRequest
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				h.reply(id, EventError, map[string]string{"message": "channels must be a list of strings"})
				return
			}
		}
		if msg.Event == clientSubscribe {
			accepted := h.broadcaster.Subscribe(id, req.Channels...)
			h.reply(id, EventSubscribed, map[string][]string{"subscribed": accepted})
			return
		}
		h.broadcaster.Unsubscribe(id, req.Channels...)
		h.reply(id, EventUnsubscribed, map[string][]string{"unsubscribed": req.Channels})

	case clientGetDashboard:
		ctx, cancel := context.WithTimeout(context.Background(), dashboardTimeout)
		defer cancel()
		d, err := h.dashboard.GetDashboard(ctx)
		if err != nil {
			h.logger.Error("dashboard for websocket client failed", zap.String("connId", id), zap.Error(err))
			h.reply(id, EventError, map[string]string{"message": "dashboard unavailable"})
			return
		}
		h.reply(id, EventDashboard, d)

	case clientPing:
		h.reply(id, EventPong, nil)

	default:
		h.reply(id, EventError, map[string]string{"message": "unknown event " + msg.Event})
	}
}

func (h *Handler) reply(id, event string, data any) {
	h.broadcaster.Send(id, Message{Event: event, Data: data})
}

func writePump(conn *websocket.Conn, outbox <-chan Message, logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-outbox:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				logger.Error("encoding websocket message", zap.String("event", msg.Event), zap.Error(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
