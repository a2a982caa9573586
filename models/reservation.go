package models

import "time"

// Reservation statuses. pending and confirmed hold the table; cancelled and
// completed are terminal and release it.
const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusCompleted = "completed"
)

type Reservation struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Code            string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"code"`
	CustomerName    string     `gorm:"type:varchar(255);not null" json:"customer_name"`
	ContactNumber   string     `gorm:"type:varchar(50);not null" json:"contact_number"`
	PartySize       uint       `gorm:"not null" json:"party_size"`
	Date            time.Time  `gorm:"type:date;not null;index" json:"date"`
	Time            string     `gorm:"type:varchar(5);not null" json:"time"`
	SpecialRequests string     `gorm:"type:text" json:"special_requests,omitempty"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TableID         uint       `gorm:"not null;index" json:"table_id"`
	Table           Table      `gorm:"foreignKey:TableID" json:"table"`
	RestaurantID    uint       `gorm:"not null;index" json:"restaurant_id"`
	Restaurant      Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
	UserID          *uint      `gorm:"index" json:"user_id,omitempty"` // nil for guest bookings
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}

// IsTerminal reports whether the reservation can no longer change state.
func (r *Reservation) IsTerminal() bool {
	return r.Status == ReservationStatusCancelled || r.Status == ReservationStatusCompleted
}

// IsActive reports whether the reservation currently holds its table.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationStatusPending || r.Status == ReservationStatusConfirmed
}
