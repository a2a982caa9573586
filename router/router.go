package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-reserve/controllers"
	"github.com/yeremiapane/restaurant-reserve/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(db)
	restaurantCtrl := controllers.NewRestaurantController(db)
	tableCtrl := controllers.NewTableController(db)
	reservationCtrl := controllers.NewReservationController(db)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------------------------------------------
	//                      AUTH
	// ----------------------------------------------------------------
	auth := r.Group("/api/auth")
	auth.Use(middlewares.NewStrictRateLimiter())
	{
		auth.POST("/register", userCtrl.Register)
		auth.POST("/login", userCtrl.Login)
	}
	r.POST("/api/auth/logout", middlewares.AuthMiddleware(), userCtrl.Logout)
	r.GET("/api/auth/profile", middlewares.AuthMiddleware(), userCtrl.GetProfile)

	// ----------------------------------------------------------------
	//                      PUBLIC
	// ----------------------------------------------------------------
	// Guests browse restaurants/tables and book without an account.
	r.GET("/api/restaurants", restaurantCtrl.GetAllRestaurants)
	r.GET("/api/restaurants/:restaurant_id", restaurantCtrl.GetRestaurantByID)
	r.GET("/api/tables", tableCtrl.GetAllTables)
	r.GET("/api/tables/available", tableCtrl.GetAvailableTables)
	r.GET("/api/tables/restaurant/:restaurant_id", tableCtrl.GetTablesByRestaurant)
	r.POST("/api/reservations", middlewares.OptionalAuthMiddleware(), reservationCtrl.CreateReservation)

	// ----------------------------------------------------------------
	//                      STAFF / ADMIN
	// ----------------------------------------------------------------
	staff := r.Group("/api")
	staff.Use(middlewares.AuthMiddleware(), middlewares.RequireRole("staff"))
	{
		staff.GET("/reservations", reservationCtrl.GetAllReservations)
		staff.GET("/reservations/:reservation_id", reservationCtrl.GetReservationByID)
		staff.GET("/reservations/date/:date", reservationCtrl.GetReservationsByDate)
		staff.GET("/reservations/restaurant/:restaurant_id", reservationCtrl.GetReservationsByRestaurant)
		staff.PATCH("/reservations/:reservation_id", reservationCtrl.UpdateReservation)
		staff.DELETE("/reservations/:reservation_id", reservationCtrl.DeleteReservation)

		staff.GET("/tables/:table_id", tableCtrl.GetTableByID)
		staff.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
	}

	admin := r.Group("/api")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireRole("admin"))
	{
		admin.GET("/users", userCtrl.GetAllUsers)

		admin.POST("/restaurants", restaurantCtrl.CreateRestaurant)
		admin.PATCH("/restaurants/:restaurant_id", restaurantCtrl.UpdateRestaurant)
		admin.DELETE("/restaurants/:restaurant_id", restaurantCtrl.DeleteRestaurant)

		admin.POST("/tables", tableCtrl.CreateTable)
		admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
	}

	// ----------------------------------------------------------------
	//                      WEBSOCKET DASHBOARD
	// ----------------------------------------------------------------
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/:role", controllers.DashboardHandler)
	}

	return r
}
