package config

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	bolt "go.etcd.io/bbolt"

	"transfers/internal/storage"
	"transfers/internal/storage/boltstore"
	"transfers/internal/storage/mysqlstore"
	"transfers/internal/utils"
)

// OpenStore opens the visitor store selected by STORE_DRIVER (bolt, mysql or memory).
func OpenStore(env Env) (storage.Store, error) {
	switch strings.ToLower(strings.TrimSpace(env.StoreDriver)) {
	case "", "bolt":
		db, err := OpenBolt(env.BoltPath)
		if err != nil {
			return nil, err
		}
		return boltStore(db)
	case "mysql":
		db, err := OpenMySQL(env.MySQLDSN)
		if err != nil {
			return nil, err
		}
		return mysqlStore(db)
	case "memory":
		return storage.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", env.StoreDriver)
	}
}

// boltStore and mysqlStore take ownership of db and close it when the store cannot be set up.
func boltStore(db *bolt.DB) (storage.Store, error) {
	s, err := boltstore.New(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bolt store: %w", err)
	}
	return s, nil
}

func mysqlStore(db *sql.DB) (storage.Store, error) {
	s, err := mysqlstore.New(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init mysql store: %w", err)
	}
	return s, nil
}

func OpenBolt(path string) (*bolt.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	utils.Log.WithField("path", path).Info("visitor store opened (bolt)")
	return db, nil
}

func OpenMySQL(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("MYSQL_DSN is required for STORE_DRIVER=mysql")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	utils.Log.Info("visitor store opened (mysql)")
	return db, nil
}
