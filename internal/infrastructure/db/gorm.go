package db

import (
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Duplicate-key errors must surface as gorm.ErrDuplicatedKey so the
		// repository can map the open-negotiation constraint to a conflict.
		TranslateError: true,
	}
}

// OpenGormWithDialector opens and pings; split out from OpenGorm so tests
// can inject a sqlmock-backed dialector.
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	gdb, err := gorm.Open(dial, gormConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return gdb, nil
}

func OpenGorm(dsn string) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn))
}

// OpenGormRetry keeps dialing until the store is reachable. An unreachable
// staging store at startup is a reconnect-and-wait condition, not a crash.
func OpenGormRetry(dsn string, attempts int, delay time.Duration) (*gorm.DB, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		gdb, err := OpenGorm(dsn)
		if err == nil {
			log.Println("gorm: connected")
			return gdb, nil
		}
		lastErr = err
		log.Printf("gorm: connect failed (%v), retrying in %s", err, delay)
		time.Sleep(delay)
	}
	return nil, lastErr
}
