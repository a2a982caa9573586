package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-reserve/models"
	"github.com/yeremiapane/restaurant-reserve/router"
	"github.com/yeremiapane/restaurant-reserve/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// TestReservationLifecycle walks the main flow:
// 1. Admin logs in and creates a restaurant and a table
// 2. A guest books the table -> table reserved
// 3. Staff confirms, then completes the booking -> table available again
// 4. A second booking on the freed table succeeds
func TestReservationLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupIntegrationDB(t)
	r := router.SetupRouter(db)

	token := loginAs(t, r, "admin@example.com", "secret123")

	restaurantID := createRestaurant(t, r, token)
	tableID := createTable(t, r, token, restaurantID)

	// Guest booking, no token
	reservationID := createReservation(t, r, "", tableID, restaurantID)
	assertTableStatus(t, db, tableID, models.TableStatusReserved)

	patchReservation(t, r, token, reservationID, map[string]string{"status": "confirmed"}, http.StatusOK)
	assertTableStatus(t, db, tableID, models.TableStatusReserved)

	// A competing booking for the same table loses
	w := postJSON(t, r, "/api/reservations", "", reservationBody(tableID, restaurantID))
	assert.Equal(t, http.StatusConflict, w.Code)

	patchReservation(t, r, token, reservationID, map[string]string{"status": "completed"}, http.StatusOK)
	assertTableStatus(t, db, tableID, models.TableStatusAvailable)

	// Terminal state is frozen
	patchReservation(t, r, token, reservationID, map[string]string{"status": "pending"}, http.StatusBadRequest)

	// The freed table can be booked again
	createReservation(t, r, "", tableID, restaurantID)
	assertTableStatus(t, db, tableID, models.TableStatusReserved)
}

func setupIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Table{},
		&models.Reservation{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	db.Create(&models.User{
		Name:     "Test Admin",
		Email:    "admin@example.com",
		Password: string(hashedPassword),
		Role:     "admin",
	})
	return db
}

func postJSON(t *testing.T, r *gin.Engine, url, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	assert.NoError(t, err)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func loginAs(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w := postJSON(t, r, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	token := response["data"].(map[string]interface{})["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func createRestaurant(t *testing.T, r *gin.Engine, token string) uint {
	t.Helper()
	w := postJSON(t, r, "/api/restaurants", token, map[string]string{
		"name":    "Warung Tengah",
		"address": "Jl. Merdeka 1",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return uint(response["data"].(map[string]interface{})["id"].(float64))
}

func createTable(t *testing.T, r *gin.Engine, token string, restaurantID uint) uint {
	t.Helper()
	w := postJSON(t, r, "/api/tables", token, map[string]interface{}{
		"table_number":  "T1",
		"capacity":      4,
		"restaurant_id": restaurantID,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return uint(response["data"].(map[string]interface{})["id"].(float64))
}

func reservationBody(tableID, restaurantID uint) map[string]interface{} {
	return map[string]interface{}{
		"customer_name":  "Budi Santoso",
		"contact_number": "+62 812 3456 789",
		"party_size":     2,
		"date":           "2026-10-01",
		"time":           "19:30",
		"table_id":       tableID,
		"restaurant_id":  restaurantID,
	}
}

func createReservation(t *testing.T, r *gin.Engine, token string, tableID, restaurantID uint) uint {
	t.Helper()
	w := postJSON(t, r, "/api/reservations", token, reservationBody(tableID, restaurantID))
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, models.ReservationStatusPending, data["status"])
	return uint(data["id"].(float64))
}

func patchReservation(t *testing.T, r *gin.Engine, token string, id uint, body interface{}, wantCode int) {
	t.Helper()
	payload, err := json.Marshal(body)
	assert.NoError(t, err)

	req, err := http.NewRequest("PATCH", "/api/reservations/"+strconv.Itoa(int(id)), bytes.NewBuffer(payload))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, wantCode, w.Code)
}

func assertTableStatus(t *testing.T, db *gorm.DB, tableID uint, want string) {
	t.Helper()
	var table models.Table
	assert.NoError(t, db.First(&table, tableID).Error)
	assert.Equal(t, want, table.Status)
}
