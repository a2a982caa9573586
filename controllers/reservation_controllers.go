package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-reserve/events"
	"github.com/yeremiapane/restaurant-reserve/services"
	"github.com/yeremiapane/restaurant-reserve/utils"
)

type ReservationController struct {
	DB      *gorm.DB
	Service *services.ReservationService
}

func NewReservationController(db *gorm.DB) *ReservationController {
	return &ReservationController{
		DB:      db,
		Service: services.NewReservationService(db),
	}
}

// respondServiceError maps workflow error kinds onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidTransition):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrConflict):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrUnavailable):
		utils.RespondError(c, http.StatusServiceUnavailable, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// CreateReservation -> book an available table (guests may call this)
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var input services.CreateReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Attach the caller if a token was presented
	if userIDInterface, exists := c.Get("user_id"); exists {
		if userID, ok := userIDInterface.(uint); ok {
			input.UserID = &userID
		}
	}

	reservation, err := rc.Service.Create(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastReservationCreate(*reservation)
	utils.RespondJSON(c, http.StatusCreated, "Reservation created successfully", reservation)
}

// GetAllReservations -> list active reservations (staff dashboard)
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	reservations, err := rc.Service.ListActive()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

// GetReservationByID -> detail of one reservation
func (rc *ReservationController) GetReservationByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("reservation_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation id"))
		return
	}

	reservation, err := rc.Service.GetByID(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", reservation)
}

// GetReservationsByDate -> list reservations for a calendar day
func (rc *ReservationController) GetReservationsByDate(c *gin.Context) {
	reservations, err := rc.Service.ListByDate(c.Param("date"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations for "+c.Param("date"), reservations)
}

// GetReservationsByRestaurant -> list reservations of one restaurant
func (rc *ReservationController) GetReservationsByRestaurant(c *gin.Context) {
	restaurantID, err := strconv.Atoi(c.Param("restaurant_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid restaurant id"))
		return
	}

	reservations, err := rc.Service.ListByRestaurant(uint(restaurantID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations of restaurant", reservations)
}

// UpdateReservation -> PATCH with a table_id moves the booking to another
// table, PATCH with a status walks the state machine. A body carrying both
// transfers first, then applies the status.
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("reservation_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation id"))
		return
	}

	var body struct {
		Status  *string `json:"status"`
		TableID *uint   `json:"table_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.Status == nil && body.TableID == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("nothing to update: provide status or table_id"))
		return
	}

	reservation, err := rc.Service.GetByID(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if body.TableID != nil {
		reservation, err = rc.Service.TransferTable(uint(id), *body.TableID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
	}
	if body.Status != nil {
		reservation, err = rc.Service.UpdateStatus(uint(id), *body.Status)
		if err != nil {
			respondServiceError(c, err)
			return
		}
	}

	events.BroadcastReservationUpdate(*reservation)
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", reservation)
}

// DeleteReservation -> remove the booking and free its table
func (rc *ReservationController) DeleteReservation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("reservation_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation id"))
		return
	}

	if err := rc.Service.Delete(uint(id)); err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastReservationDelete(uint(id))
	utils.RespondJSON(c, http.StatusOK, "Reservation deleted successfully", gin.H{
		"reservation_id": id,
	})
}
