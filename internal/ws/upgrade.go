package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type registerMessage struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// UpgradeEarningsWS upgrades the connection for the live earnings channel.
// The session declares its identity once, via the user_id query param or a
// first {"type":"register","user_id":...} frame, and then only receives.
func UpgradeEarningsWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		userID := c.Query("user_id")
		if userID == "" {
			conn.SetReadDeadline(time.Now().Add(10 * time.Second))
			var msg registerMessage
			if err := conn.ReadJSON(&msg); err != nil || msg.UserID == "" {
				conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"register with a user_id"}`))
				return
			}
			conn.SetReadDeadline(time.Time{})
			userID = msg.UserID
		}

		client := &Client{
			UserID: userID,
			Send:   make(chan []byte, 256),
		}
		hub.Register(client)
		defer client.Close()
		log.Printf("[ws] user %s joined for live updates", userID)

		go writePump(client, conn)
		readPump(conn)
	}
}

// writePump copies messages from client.Send to the connection.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
