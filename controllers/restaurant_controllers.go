package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"net/http"

	"github.com/yeremiapane/restaurant-reserve/models"
	"github.com/yeremiapane/restaurant-reserve/utils"
)

type RestaurantController struct {
	DB *gorm.DB
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{DB: db}
}

// CreateRestaurant -> register a restaurant
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		Address   string `json:"address"`
		Phone     string `json:"phone"`
		OpenTime  string `json:"open_time"`
		CloseTime string `json:"close_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurant := models.Restaurant{
		Name:      req.Name,
		Address:   req.Address,
		Phone:     req.Phone,
		OpenTime:  req.OpenTime,
		CloseTime: req.CloseTime,
	}
	if err := rc.DB.Create(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New restaurant created: %s", restaurant.Name)
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created successfully", restaurant)
}

// GetAllRestaurants -> list restaurants with their tables
func (rc *RestaurantController) GetAllRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	if err := rc.DB.Preload("Tables", "is_active = ?", true).Find(&restaurants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
}

// GetRestaurantByID -> detail of one restaurant with its tables
func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	var restaurant models.Restaurant
	if err := rc.DB.Preload("Tables", "is_active = ?", true).
		First(&restaurant, c.Param("restaurant_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// UpdateRestaurant -> partial update of restaurant fields
func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, c.Param("restaurant_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Name      *string `json:"name"`
		Address   *string `json:"address"`
		Phone     *string `json:"phone"`
		OpenTime  *string `json:"open_time"`
		CloseTime *string `json:"close_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		restaurant.Name = *req.Name
	}
	if req.Address != nil {
		restaurant.Address = *req.Address
	}
	if req.Phone != nil {
		restaurant.Phone = *req.Phone
	}
	if req.OpenTime != nil {
		restaurant.OpenTime = *req.OpenTime
	}
	if req.CloseTime != nil {
		restaurant.CloseTime = *req.CloseTime
	}

	if err := rc.DB.Save(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", restaurant)
}

// DeleteRestaurant -> remove a restaurant without active bookings
func (rc *RestaurantController) DeleteRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, c.Param("restaurant_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var held int64
	if err := rc.DB.Model(&models.Reservation{}).
		Where("restaurant_id = ? AND status IN ?", restaurant.ID,
			[]string{models.ReservationStatusPending, models.ReservationStatusConfirmed}).
		Count(&held).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if held > 0 {
		utils.RespondError(c, http.StatusConflict,
			gin.Error{Err: ErrActiveReservations, Type: gin.ErrorTypePublic})
		return
	}

	if err := rc.DB.Delete(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Restaurant %d deleted", restaurant.ID)
	utils.RespondJSON(c, http.StatusOK, "Restaurant deleted", gin.H{"id": restaurant.ID})
}
