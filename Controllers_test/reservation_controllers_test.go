package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-reserve/controllers"
	"github.com/yeremiapane/restaurant-reserve/models"
	"github.com/yeremiapane/restaurant-reserve/utils"
)

func setupTestDBForReservations(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Restaurant{}, &models.Table{}, &models.Reservation{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	db.Create(&models.Restaurant{Name: "Testaurant"})
	return db
}

func setupReservationRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	reservationCtrl := controllers.NewReservationController(db)
	router.POST("/reservations", reservationCtrl.CreateReservation)
	router.GET("/reservations", reservationCtrl.GetAllReservations)
	router.GET("/reservations/date/:date", reservationCtrl.GetReservationsByDate)
	router.PATCH("/reservations/:reservation_id", reservationCtrl.UpdateReservation)
	router.DELETE("/reservations/:reservation_id", reservationCtrl.DeleteReservation)
	return router
}

func createBody() map[string]interface{} {
	return map[string]interface{}{
		"customer_name":  "Alice Smith",
		"contact_number": "+62 812 0000 111",
		"party_size":     2,
		"date":           "2026-10-01",
		"time":           "19:30",
		"table_id":       1,
		"restaurant_id":  1,
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		buf = bytes.NewBuffer(payload)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, buf)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateReservationEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	db.Create(&models.Table{TableNumber: "T1", Capacity: 4, Status: "available", RestaurantID: 1, IsActive: true})

	router := setupReservationRouter(db)
	w := doJSON(t, router, "POST", "/reservations", createBody())
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Reservation created successfully", response["message"])

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.NotEmpty(t, data["code"])

	var table models.Table
	db.First(&table, 1)
	assert.Equal(t, "reserved", table.Status)
}

func TestCreateReservationConflict(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	db.Create(&models.Table{TableNumber: "T1", Capacity: 4, Status: "reserved", RestaurantID: 1, IsActive: true})

	router := setupReservationRouter(db)
	w := doJSON(t, router, "POST", "/reservations", createBody())
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	db.Model(&models.Reservation{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateReservationUnknownTable(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)

	router := setupReservationRouter(db)
	w := doJSON(t, router, "POST", "/reservations", createBody())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateReservationMissingFields(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	db.Create(&models.Table{TableNumber: "T1", Capacity: 4, Status: "available", RestaurantID: 1, IsActive: true})

	body := createBody()
	delete(body, "customer_name")

	router := setupReservationRouter(db)
	w := doJSON(t, router, "POST", "/reservations", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelReservationEndpointReleasesTable(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	db.Create(&models.Table{TableNumber: "T1", Capacity: 4, Status: "available", RestaurantID: 1, IsActive: true})

	router := setupReservationRouter(db)
	w := doJSON(t, router, "POST", "/reservations", createBody())
	assert.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &created)
	id := int(created["data"].(map[string]interface{})["id"].(float64))

	w = doJSON(t, router, "PATCH", "/reservations/"+strconv.Itoa(id),
		map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusOK, w.Code)

	var table models.Table
	db.First(&table, 1)
	assert.Equal(t, "available", table.Status)
}

func TestUpdateReservationInvalidTransition(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	db.Create(&models.Table{TableNumber: "T1", Capacity: 4, Status: "available", RestaurantID: 1, IsActive: true})

	router := setupReservationRouter(db)
	w := doJSON(t, router, "POST", "/reservations", createBody())
	var created map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &created)
	id := int(created["data"].(map[string]interface{})["id"].(float64))

	// pending -> completed skips confirmation
	w = doJSON(t, router, "PATCH", "/reservations/"+strconv.Itoa(id),
		map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var reservation models.Reservation
	db.First(&reservation, id)
	assert.Equal(t, "pending", reservation.Status)
}

func TestTransferReservationEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	db.Create(&models.Table{TableNumber: "T1", Capacity: 4, Status: "available", RestaurantID: 1, IsActive: true})
	db.Create(&models.Table{TableNumber: "T2", Capacity: 4, Status: "available", RestaurantID: 1, IsActive: true})

	router := setupReservationRouter(db)
	w := doJSON(t, router, "POST", "/reservations", createBody())
	var created map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &created)
	id := int(created["data"].(map[string]interface{})["id"].(float64))

	w = doJSON(t, router, "PATCH", "/reservations/"+strconv.Itoa(id),
		map[string]uint{"table_id": 2})
	assert.Equal(t, http.StatusOK, w.Code)

	var t1, t2 models.Table
	db.First(&t1, 1)
	db.First(&t2, 2)
	assert.Equal(t, "available", t1.Status)
	assert.Equal(t, "reserved", t2.Status)
}

func TestDeleteReservationEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	db.Create(&models.Table{TableNumber: "T1", Capacity: 4, Status: "available", RestaurantID: 1, IsActive: true})

	router := setupReservationRouter(db)
	w := doJSON(t, router, "POST", "/reservations", createBody())
	var created map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &created)
	id := int(created["data"].(map[string]interface{})["id"].(float64))

	w = doJSON(t, router, "DELETE", "/reservations/"+strconv.Itoa(id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "DELETE", "/reservations/"+strconv.Itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var table models.Table
	db.First(&table, 1)
	assert.Equal(t, "available", table.Status)
}

func TestGetReservationsByDateEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReservations(t)
	db.Create(&models.Table{TableNumber: "T1", Capacity: 4, Status: "available", RestaurantID: 1, IsActive: true})

	router := setupReservationRouter(db)
	w := doJSON(t, router, "POST", "/reservations", createBody())
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "GET", "/reservations/date/2026-10-01", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].([]interface{})
	assert.Len(t, data, 1)

	w = doJSON(t, router, "GET", "/reservations/date/2026-10-02", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	response = map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Empty(t, response["data"])
}
