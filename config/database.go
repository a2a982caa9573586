package config

import (
	"fmt"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-reserve/utils"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// InitDB opens the database selected by DB_DRIVER (mysql, postgres or
// sqlite) and retries while the database container is still coming up.
func InitDB() (*gorm.DB, error) {
	driver := getEnv("DB_DRIVER", "mysql")

	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			getEnv("DB_USER", "root"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_HOST", "127.0.0.1"),
			getEnv("DB_PORT", "3306"),
			getEnv("DB_NAME", "restaurant_reserve"),
		)
		dialector = mysql.Open(dsn)
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			getEnv("DB_HOST", "127.0.0.1"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "restaurant_reserve"),
			getEnv("DB_PORT", "5432"),
		)
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(getEnv("DB_PATH", "restaurant_reserve.db"))
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	var db *gorm.DB
	var err error
	maxRetries := 10
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{})
		if err == nil {
			break
		}
		utils.ErrorLogger.Printf("Database connection attempt %d/%d failed: %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(3 * time.Second)
		}
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Connected to %s database", driver)
	return db, nil
}
