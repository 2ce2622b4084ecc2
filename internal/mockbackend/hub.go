package mockbackend

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/realtime"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

const hubWriteWait = 5 * time.Second

type hubClient struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *hubClient) send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub reparte eventos a las conexiones realtime de cada tienda.
type Hub struct {
	dir *Directory
	log *logger.Logger

	mu      sync.RWMutex
	clients map[string]map[*hubClient]struct{}
}

// NewHub crea el hub.
func NewHub(dir *Directory, log *logger.Logger) *Hub {
	return &Hub{dir: dir, log: log.Component("realtime_hub"), clients: make(map[string]map[*hubClient]struct{})}
}

// Serve atiende una conexión: espera el frame {"auth": {"storeId"}} y luego la mantiene
// registrada hasta que el cliente la cierre.
func (h *Hub) Serve(conn *websocket.Conn) {
	cl := &hubClient{id: uuid.NewString(), conn: conn}
	defer conn.Close()

	var auth struct {
		Auth struct {
			StoreID string `json:"storeId"`
		} `json:"auth"`
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return
	}
	if err := json.Unmarshal(raw, &auth); err != nil || auth.Auth.StoreID == "" {
		h.reject(cl, "frame de autenticación inválido")
		return
	}
	storeID := auth.Auth.StoreID
	if q := conn.Query("storeId"); q != "" && q != storeID {
		h.reject(cl, "storeId no coincide")
		return
	}
	if _, err := h.dir.Store(storeID); err != nil {
		h.reject(cl, "tienda desconocida")
		return
	}

	h.add(storeID, cl)
	defer h.remove(storeID, cl)
	h.log.Info().Str("store_id", storeID).Str("conn_id", cl.id).Msg("cliente realtime conectado")

	if msg, err := realtime.Encode(entity.ConnectionEstablished{StoreID: storeID, ConnectionID: cl.id}); err == nil {
		_ = cl.send(msg)
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Info().Str("store_id", storeID).Str("conn_id", cl.id).Msg("cliente realtime desconectado")
			return
		}
	}
}

func (h *Hub) reject(cl *hubClient, msg string) {
	if out, err := realtime.Encode(entity.ErrorEvent{Message: msg}); err == nil {
		_ = cl.send(out)
	}
	h.log.Warn().Str("conn_id", cl.id).Msg(msg)
}

func (h *Hub) add(storeID string, cl *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[storeID]
	if !ok {
		set = make(map[*hubClient]struct{})
		h.clients[storeID] = set
	}
	set[cl] = struct{}{}
}

func (h *Hub) remove(storeID string, cl *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[storeID], cl)
	if len(h.clients[storeID]) == 0 {
		delete(h.clients, storeID)
	}
}

// Connections cantidad de conexiones abiertas para storeID.
func (h *Hub) Connections(storeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[storeID])
}

// Broadcast envía ev a todas las conexiones de storeID. Devuelve a cuántas llegó.
func (h *Hub) Broadcast(storeID string, ev entity.Event) (int, error) {
	msg, err := realtime.Encode(ev)
	if err != nil {
		return 0, err
	}
	h.mu.RLock()
	targets := make([]*hubClient, 0, len(h.clients[storeID]))
	for cl := range h.clients[storeID] {
		targets = append(targets, cl)
	}
	h.mu.RUnlock()

	sent := 0
	for _, cl := range targets {
		if err := cl.send(msg); err != nil {
			h.log.Warn().Err(err).Str("conn_id", cl.id).Msg("no se pudo entregar evento")
			continue
		}
		sent++
	}
	return sent, nil
}
