package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-reserve/events"
	"github.com/yeremiapane/restaurant-reserve/models"
	"github.com/yeremiapane/restaurant-reserve/services"
	"github.com/yeremiapane/restaurant-reserve/utils"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// CreateTable -> register a new table for a restaurant
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber  string `json:"table_number" binding:"required"`
		Capacity     uint   `json:"capacity" binding:"required"`
		RestaurantID uint   `json:"restaurant_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var count int64
	if err := tc.DB.Model(&models.Restaurant{}).Where("id = ?", req.RestaurantID).Count(&count).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if count == 0 {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("restaurant %d not found", req.RestaurantID))
		return
	}

	table := models.Table{
		TableNumber:  req.TableNumber,
		Capacity:     req.Capacity,
		Status:       models.TableStatusAvailable,
		RestaurantID: req.RestaurantID,
		IsActive:     true,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}

	events.BroadcastMessage(events.Message{
		Event: events.EventTableCreate,
		Data: map[string]interface{}{
			"table": table,
			"stats": tc.getDashboardStats(),
		},
	})

	utils.InfoLogger.Printf("New table created: %s (restaurant=%d, capacity=%d)",
		table.TableNumber, table.RestaurantID, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> list every active table
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Where("is_active = ?", true).Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetAvailableTables -> list tables a booking can target
func (tc *TableController) GetAvailableTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Where("status = ? AND is_active = ?", models.TableStatusAvailable, true).
		Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Available tables", tables)
}

// GetTablesByRestaurant -> active tables of one restaurant
func (tc *TableController) GetTablesByRestaurant(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Where("restaurant_id = ? AND is_active = ?", c.Param("restaurant_id"), true).
		Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tables of restaurant", tables)
}

// GetTableByID -> detail of one table
func (tc *TableController) GetTableByID(c *gin.Context) {
	var table models.Table
	if err := tc.DB.Where("is_active = ?", true).First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTableStatus -> manual status override for walk-ins and cleanup. A
// table held by an active reservation cannot be forced back to available.
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	switch body.Status {
	case models.TableStatusAvailable, models.TableStatusReserved, models.TableStatusOccupied:
	default:
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown table status %q", body.Status))
		return
	}

	var table models.Table
	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("is_active = ?", true).First(&table, c.Param("table_id")).Error; err != nil {
			return err
		}

		if body.Status == models.TableStatusAvailable {
			var held int64
			if err := tx.Model(&models.Reservation{}).
				Where("table_id = ? AND status IN ?", table.ID,
					[]string{models.ReservationStatusPending, models.ReservationStatusConfirmed}).
				Count(&held).Error; err != nil {
				return err
			}
			if held > 0 {
				return services.ErrConflict
			}
		}

		table.Status = body.Status
		return tx.Save(&table).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
		} else if errors.Is(err, services.ErrConflict) {
			utils.RespondError(c, http.StatusConflict,
				fmt.Errorf("table %d is held by an active reservation", table.ID))
		} else {
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	events.BroadcastTableUpdate(table, tc.getDashboardStats())
	utils.InfoLogger.Printf("Table %d status changed to %s", table.ID, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// DeleteTable -> soft delete; refused while an active reservation holds it
func (tc *TableController) DeleteTable(c *gin.Context) {
	var table models.Table
	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("is_active = ?", true).First(&table, c.Param("table_id")).Error; err != nil {
			return err
		}

		var held int64
		if err := tx.Model(&models.Reservation{}).
			Where("table_id = ? AND status IN ?", table.ID,
				[]string{models.ReservationStatusPending, models.ReservationStatusConfirmed}).
			Count(&held).Error; err != nil {
			return err
		}
		if held > 0 {
			return services.ErrConflict
		}

		table.IsActive = false
		return tx.Save(&table).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
		} else if errors.Is(err, services.ErrConflict) {
			utils.RespondError(c, http.StatusConflict,
				fmt.Errorf("table %d is held by an active reservation", table.ID))
		} else {
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	events.BroadcastMessage(events.Message{
		Event: events.EventTableDelete,
		Data: map[string]interface{}{
			"table_id": table.ID,
			"stats":    tc.getDashboardStats(),
		},
	})

	utils.InfoLogger.Printf("Table %d deactivated", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": table.ID})
}

// getDashboardStats counts active tables per status for dashboard broadcasts.
func (tc *TableController) getDashboardStats() map[string]interface{} {
	var availableCount, reservedCount, occupiedCount int64

	tc.DB.Model(&models.Table{}).Where("status = ? AND is_active = ?", models.TableStatusAvailable, true).Count(&availableCount)
	tc.DB.Model(&models.Table{}).Where("status = ? AND is_active = ?", models.TableStatusReserved, true).Count(&reservedCount)
	tc.DB.Model(&models.Table{}).Where("status = ? AND is_active = ?", models.TableStatusOccupied, true).Count(&occupiedCount)

	return map[string]interface{}{
		"available": availableCount,
		"reserved":  reservedCount,
		"occupied":  occupiedCount,
		"total":     availableCount + reservedCount + occupiedCount,
	}
}
