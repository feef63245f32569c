package database

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/barkshad/Real-estate/internal/config"
	"github.com/barkshad/Real-estate/internal/store"
)

// Open connects the store selected by cfg.Type and prepares its schema
func Open(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Type {
	case "", "memory":
		log.Println("Using in-memory store")
		return store.NewMemory(), nil

	case "mysql":
		log.Println("Using MySQL with GORM")
		m := cfg.MySQL
		gormDB, err := NewGormDB(
			withDefault(m.Host, "mysql"),
			portOrDefault(m.Port, "3306"),
			withDefault(m.User, "homequest"),
			m.Password,
			withDefault(m.Database, "homequest"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		if err := gormDB.InitSchema(); err != nil {
			gormDB.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		return gormDB, nil

	case "postgres":
		log.Println("Using PostgreSQL")
		p := cfg.Postgres
		db, err := NewDB(
			withDefault(p.Host, "db"),
			portOrDefault(p.Port, "5432"),
			withDefault(p.User, "homequest"),
			p.Password,
			withDefault(p.Database, "homequest"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.InitSchema(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		return db, nil

	case "mongo":
		log.Println("Using MongoDB")
		m, err := NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		if err := m.InitSchema(ctx); err != nil {
			m.Close()
			return nil, err
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown database type %q", cfg.Type)
}

func withDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func portOrDefault(port int, fallback string) string {
	if port > 0 {
		return strconv.Itoa(port)
	}
	return fallback
}
