package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"zaqeen-be/internal/config"
	"zaqeen-be/internal/logger"
)

// InitDB opens the Postgres pool and verifies connectivity. The pool is
// capped because reservations run serializable transactions that hold row
// locks; unbounded connections just widen the conflict window.
func InitDB(cfg *config.Config) *sql.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.L().Fatal("failed to open database", zap.Error(err))
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		logger.L().Fatal("failed to ping database", zap.Error(err))
	}

	logger.L().Info("database connection established")
	return db
}
