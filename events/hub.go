package events

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-reserve/models"
	"github.com/yeremiapane/restaurant-reserve/utils"
)

// Event types pushed to dashboard clients.
const (
	EventReservationCreate = "reservation_create"
	EventReservationUpdate = "reservation_update"
	EventReservationDelete = "reservation_delete"
	EventTableUpdate       = "table_update"
	EventTableCreate       = "table_create"
	EventTableDelete       = "table_delete"
	EventStaffNotif        = "staff_notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds the connected dashboard clients (staff, admin) keyed by role.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient drops a connection and closes it.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastReservationCreate announces a new booking.
func BroadcastReservationCreate(reservation models.Reservation) {
	broadcast(Message{Event: EventReservationCreate, Data: reservation})
}

// BroadcastReservationUpdate announces a status change or table transfer.
func BroadcastReservationUpdate(reservation models.Reservation) {
	broadcast(Message{Event: EventReservationUpdate, Data: reservation})
}

// BroadcastReservationDelete announces a removed booking.
func BroadcastReservationDelete(reservationID uint) {
	broadcast(Message{
		Event: EventReservationDelete,
		Data:  map[string]interface{}{"reservation_id": reservationID},
	})
}

// BroadcastTableUpdate announces a table status change with dashboard stats.
func BroadcastTableUpdate(table models.Table, stats interface{}) {
	broadcast(Message{
		Event: EventTableUpdate,
		Data: map[string]interface{}{
			"table": table,
			"stats": stats,
		},
	})
}

// BroadcastStaffNotification sends a plain text notice to staff dashboards.
func BroadcastStaffNotification(message string) {
	broadcast(Message{Event: EventStaffNotif, Data: message})
}

// BroadcastMessage broadcasts an arbitrary event.
func BroadcastMessage(msg Message) {
	broadcast(msg)
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling event: %v", err)
		return
	}

	for conn, role := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s event to %s client: %v", msg.Event, role, err)
		}
	}
}
