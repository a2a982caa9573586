package models

import "time"

type Restaurant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Address   string    `gorm:"type:varchar(255)" json:"address"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone"`
	OpenTime  string    `gorm:"type:varchar(5)" json:"open_time"`
	CloseTime string    `gorm:"type:varchar(5)" json:"close_time"`
	Tables    []Table   `gorm:"foreignKey:RestaurantID" json:"tables,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
