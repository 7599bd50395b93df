package postgres

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// DriverName is the database/sql name registered by pgx's stdlib package.
const DriverName = "pgx"

type ConnectionInfo struct {
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string
}

func (info ConnectionInfo) dsn() string {
	if info.DSN != "" {
		return info.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		info.Host, info.Port, info.User, info.Password, info.DB, info.SSLMode,
	)
}

type Postgres struct {
	DB *sqlx.DB
}

func NewConnection(ctx context.Context, info ConnectionInfo) (*Postgres, error) {
	db, err := sqlx.Open(DriverName, info.dsn())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Postgres{DB: db}, nil
}

func (p *Postgres) Close() error {
	if p.DB != nil {
		return p.DB.Close()
	}
	return nil
}
