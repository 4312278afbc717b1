package main

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"mindaudit/internal/models"
)

const (
	readLimit          = 1 << 20
	readDeadline       = 120 * time.Second
	writeDeadline      = 5 * time.Second
	pingInterval       = 15 * time.Second
	firstHelloDeadline = 30 * time.Second
)

type threadClient struct {
	consultationID int64
	conn           *websocket.Conn
}

type threadMsg struct {
	consultationID int64
	msg            models.ConsultationMessage
}

// WebSocketManager pushes new thread messages to clients subscribed to a
// consultation. All access to clients happens in Run.
type WebSocketManager struct {
	clients    map[int64]map[*websocket.Conn]struct{}
	publish    chan threadMsg
	register   chan threadClient
	unregister chan threadClient
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[int64]map[*websocket.Conn]struct{}),
		publish:    make(chan threadMsg),
		register:   make(chan threadClient),
		unregister: make(chan threadClient),
	}
}

func (ws *WebSocketManager) Run() {
	for {
		select {
		case client := <-ws.register:
			conns, ok := ws.clients[client.consultationID]
			if !ok {
				conns = make(map[*websocket.Conn]struct{})
				ws.clients[client.consultationID] = conns
			}
			conns[client.conn] = struct{}{}

		case client := <-ws.unregister:
			if conns, ok := ws.clients[client.consultationID]; ok {
				if _, ok := conns[client.conn]; ok {
					client.conn.Close()
					delete(conns, client.conn)
					if len(conns) == 0 {
						delete(ws.clients, client.consultationID)
					}
				}
			}

		case tm := <-ws.publish:
			for conn := range ws.clients[tm.consultationID] {
				conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := conn.WriteJSON(tm.msg); err != nil {
					log.Printf("thread push error consultation=%d: %v", tm.consultationID, err)
					conn.Close()
					delete(ws.clients[tm.consultationID], conn)
				}
			}
		}
	}
}

// Publish hands a freshly stored message to every subscribed client.
func (ws *WebSocketManager) Publish(consultationID int64, msg models.ConsultationMessage) {
	ws.publish <- threadMsg{consultationID: consultationID, msg: msg}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// WebSocketHandler subscribes the caller to a consultation thread. The
// consultation id comes from the query string; access is checked against the
// authenticated actor before the subscription is registered. Messages are
// sent over REST; the socket is push-only.
func (app *application) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	actor := models.ActingUser{}
	if v, ok := r.Context().Value("user_id").(int); ok {
		actor.ID = v
	}
	if v, ok := r.Context().Value("role").(string); ok {
		actor.Role = v
	}
	if v, ok := r.Context().Value("collaborator_id").(int); ok {
		actor.CollaboratorID = v
	}

	consultationID, err := strconv.ParseInt(r.URL.Query().Get("consultation_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}
	if _, _, err := app.consultationService.Detail(r.Context(), actor, consultationID); err != nil {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	client := threadClient{consultationID: consultationID, conn: conn}
	app.wsManager.register <- client

	go app.pingLoop(client)
	go app.drainLoop(client)
}

func (app *application) pingLoop(client threadClient) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for range t.C {
		client.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			app.wsManager.unregister <- client
			return
		}
	}
}

// drainLoop discards incoming frames and unregisters on close.
func (app *application) drainLoop(client threadClient) {
	defer func() {
		app.wsManager.unregister <- client
	}()
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}
