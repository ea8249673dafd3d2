package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"gitlab.com/arcanecrypto/noded/internal/lnproto"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
	Subprotocols: []string{},
}

// wsSubscriber adapts a single gorilla connection into a peer.Subscriber,
// serializing writes since the underlying connection isn't safe for
// concurrent use.
type wsSubscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsSubscriber) Send(event lnproto.NodeEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Error("could not marshal websocket event")
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.WriteMessage(websocket.TextMessage, body); err != nil {
		log.WithError(err).Debug("websocket write failed, dropping subscriber")
	}
}

// websocket upgrades the connection and subscribes it to the supervisor's
// event bus, emitting one JSON frame per event until the client
// disconnects. Client-to-server frames are read and discarded; they
// exist only so the read loop observes the close.
func (s *Server) websocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Debug("could not upgrade websocket connection")
		return
	}
	defer conn.Close()

	sub := &wsSubscriber{conn: conn}
	id := s.supervisor.EventBus().Subscribe(sub)
	defer s.supervisor.EventBus().Unsubscribe(id)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
