package models

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// BaseModel contains common columns for all tables
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Database connection instance
var DB *gorm.DB

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DSN        string
	SQLitePath string
}

// InitDB initializes database connection
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	var err error

	// Connect to MySQL when a DSN is configured, otherwise fall back to a
	// local SQLite file. TranslateError lets the callers treat duplicate-key
	// violations uniformly as gorm.ErrDuplicatedKey on both drivers.
	gormConfig := &gorm.Config{TranslateError: true}
	if config.DSN != "" {
		DB, err = gorm.Open(mysql.Open(config.DSN), gormConfig)
	} else {
		DB, err = gorm.Open(sqlite.Open(config.SQLitePath), gormConfig)
	}
	if err != nil {
		return nil, err
	}

	// Auto migrate the database models
	err = DB.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Doctor{},
		&BookingSource{},
		&Appointment{},
	)
	if err != nil {
		return nil, err
	}

	return DB, nil
}
