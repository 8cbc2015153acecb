package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rentals-api/config"
	"rentals-api/domain"
)

// Open connects to the configured dialect and tunes the connection pool.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	lvl := logger.Silent
	if cfg.LogSQL {
		lvl = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log.New(log.Writer(), "", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite serializes writers anyway
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

func dialectorFor(cfg config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		dsn := cfg.URL
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
		}
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := cfg.URL
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		dsn := cfg.URL
		if dsn == "" {
			dsn = cfg.Name + ".db?_foreign_keys=on"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// Migrate creates or updates every table the API uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Facility{},
		&domain.PaymentMethod{},
		&domain.Property{},
		&domain.Photo{},
		&domain.Booking{},
		&domain.OTP{},
		&domain.PasswordResetToken{},
	)
}

var (
	defaultFacilities     = []string{"Wi-Fi", "Kitchen", "Air conditioning", "Heating", "Washing machine", "Free parking", "Pool", "TV"}
	defaultPaymentMethods = []string{"Credit card", "PayPal", "Bank transfer"}
)

// Seed inserts the lookup rows a fresh database needs. Existing rows are kept.
func Seed(db *gorm.DB) error {
	for _, name := range defaultFacilities {
		if err := db.Where(domain.Facility{Name: name}).FirstOrCreate(&domain.Facility{}).Error; err != nil {
			return fmt.Errorf("seed facility %q: %w", name, err)
		}
	}
	for _, name := range defaultPaymentMethods {
		if err := db.Where(domain.PaymentMethod{Name: name}).FirstOrCreate(&domain.PaymentMethod{}).Error; err != nil {
			return fmt.Errorf("seed payment method %q: %w", name, err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
