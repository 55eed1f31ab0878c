package live

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/h21s/table-tracker/models"
)

// Event types
const (
	EventTableTick    = "table_tick"
	EventSessionEnded = "session_ended"
	EventRateUpdate   = "rate_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung semua client live view (staff, admin) untuk broadcast
// status meja per detik.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient -> menambahkan connection ke set dengan role
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastTableTick -> snapshot semua meja satu game type, tiap tick
func BroadcastTableTick(gameType string, tables map[int]models.TableView) {
	broadcast(Message{
		Event: EventTableTick,
		Data: map[string]interface{}{
			"game_type": gameType,
			"tables":    tables,
		},
	})
}

// BroadcastSessionEnded -> sesi final, supaya client bisa munculkan
// prompt assign customer
func BroadcastSessionEnded(tableID int, session models.SessionSummary) {
	broadcast(Message{
		Event: EventSessionEnded,
		Data: map[string]interface{}{
			"table_id": tableID,
			"session":  session,
		},
	})
}

// BroadcastRateUpdate -> rate meja berubah
func BroadcastRateUpdate(gameType string, tableID int, rate float64) {
	broadcast(Message{
		Event: EventRateUpdate,
		Data: map[string]interface{}{
			"game_type": gameType,
			"table_id":  tableID,
			"rate":      rate,
		},
	})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, role := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to %s client: %v", role, err)
			continue
		}
	}
}
