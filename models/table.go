package models

import "time"

// Table statuses. Status changes for reserved/available go through the
// reservation coordinator; "occupied" is a manual override for walk-ins.
const (
	TableStatusAvailable = "available"
	TableStatusReserved  = "reserved"
	TableStatusOccupied  = "occupied"
)

type Table struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TableNumber  string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_tables_restaurant_number" json:"table_number"`
	Capacity     uint       `gorm:"not null;default:2" json:"capacity"`
	Status       string     `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	RestaurantID uint       `gorm:"not null;uniqueIndex:idx_tables_restaurant_number" json:"restaurant_id"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}
