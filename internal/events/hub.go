package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Topic - тип события обновления. Клиент подписан сразу на все топики
// своего пользователя и по топику решает, какие данные перезагрузить.
type Topic string

const (
	TopicRefreshAppointments Topic = "refresh-appointments"
	TopicRefreshVouchers     Topic = "refresh-vouchers"
	TopicRefreshWallet       Topic = "refresh-wallet"
	TopicRefreshCourses      Topic = "refresh-courses"
	TopicAppointmentReminder Topic = "appointment-reminder"
)

type Event struct {
	Topic     Topic       `json:"topic"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Publisher - то, что нужно сервисам: отправить событие пользователю или
// всем подключенным. Сервисы не знают про WebSocket.
type Publisher interface {
	Publish(userID int64, topic Topic, payload interface{})
	Broadcast(topic Topic, payload interface{})
}

type client struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
}

type envelope struct {
	userID int64 // 0 - всем
	data   []byte
}

// Hub держит активные соединения и раздает типизированные события.
type Hub struct {
	clients map[int64][]*client

	register   chan *client
	unregister chan *client
	outbound   chan envelope

	logger *zap.Logger
	mutex  sync.RWMutex
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64][]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
		outbound:   make(chan envelope, 256),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c.userID] = append(h.clients[c.userID], c)
			h.mutex.Unlock()
			h.logger.Info("клиент подключился к событиям", zap.Int64("user_id", c.userID))

		case c := <-h.unregister:
			h.mutex.Lock()
			conns := h.clients[c.userID]
			for i, other := range conns {
				if other == c {
					h.clients[c.userID] = append(conns[:i], conns[i+1:]...)
					close(c.send)
					break
				}
			}
			if len(h.clients[c.userID]) == 0 {
				delete(h.clients, c.userID)
			}
			h.mutex.Unlock()
			h.logger.Info("клиент отключился от событий", zap.Int64("user_id", c.userID))

		case env := <-h.outbound:
			h.mutex.RLock()
			if env.userID == 0 {
				for _, conns := range h.clients {
					for _, c := range conns {
						h.deliver(c, env.data)
					}
				}
			} else {
				for _, c := range h.clients[env.userID] {
					h.deliver(c, env.data)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

func (h *Hub) deliver(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		// Переполненный канал не блокирует рассылку; соединение закроется
		// само при следующей ошибке записи.
		h.logger.Warn("канал клиента переполнен, событие пропущено", zap.Int64("user_id", c.userID))
	}
}

func (h *Hub) Publish(userID int64, topic Topic, payload interface{}) {
	h.enqueue(userID, topic, payload)
}

func (h *Hub) Broadcast(topic Topic, payload interface{}) {
	h.enqueue(0, topic, payload)
}

func (h *Hub) enqueue(userID int64, topic Topic, payload interface{}) {
	event := Event{
		Topic:     topic,
		Payload:   payload,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("не удалось сериализовать событие", zap.Error(err))
		return
	}

	select {
	case h.outbound <- envelope{userID: userID, data: data}:
	default:
		h.logger.Warn("очередь событий переполнена, событие пропущено", zap.String("topic", string(topic)))
	}
}

// HandleWebSocket апгрейдит соединение; userID берется из контекста,
// проставленного auth-middleware.
func (h *Hub) HandleWebSocket(c *gin.Context, userID int64) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("не удалось установить WebSocket-соединение", zap.Error(err))
		return
	}

	cl := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, 64),
		hub:    h,
	}

	h.register <- cl

	go cl.writePump()
	go cl.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// События идут только от сервера; входящие сообщения игнорируются.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("ошибка чтения WebSocket", zap.Error(err))
			}
			break
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
