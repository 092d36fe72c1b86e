package config

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	bolt "go.etcd.io/bbolt"

	"transfers/internal/utils"
)

func TestLocationLoadsZone(t *testing.T) {
	loc := Env{TimeZone: "Atlantic/Madeira"}.Location()
	if loc.String() != "Atlantic/Madeira" {
		t.Fatalf("expected Atlantic/Madeira, got %s", loc)
	}
}

func TestLocationLogsFallback(t *testing.T) {
	var buf bytes.Buffer
	out := utils.Log.Out
	utils.Log.SetOutput(&buf)
	defer utils.Log.SetOutput(out)

	loc := Env{TimeZone: "Atlantic/Nowhere"}.Location()
	if loc != time.UTC {
		t.Fatalf("expected UTC fallback, got %s", loc)
	}
	if !strings.Contains(buf.String(), "Atlantic/Nowhere") {
		t.Fatalf("fallback should be logged, got %q", buf.String())
	}
}

func TestBoltStoreClosesDBOnInitFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.db")
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = db.Close()

	ro, err := bolt.Open(path, 0o600, &bolt.Options{ReadOnly: true})
	if err != nil {
		t.Fatalf("open read-only: %v", err)
	}
	if _, err := boltStore(ro); err == nil {
		t.Fatalf("expected init error on a read-only database")
	}
	if err := ro.View(func(*bolt.Tx) error { return nil }); !errors.Is(err, bolt.ErrDatabaseNotOpen) {
		t.Fatalf("database should be closed after a failed init, got %v", err)
	}
}

func TestMySQLStoreClosesDBOnInitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	mock.ExpectQuery("information_schema\\.tables").WithArgs("visitor_state").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS visitor_state").
		WillReturnError(errors.New("access denied"))
	mock.ExpectClose()

	if _, err := mysqlStore(db); err == nil {
		t.Fatalf("expected init error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
	if err := db.PingContext(context.Background()); err == nil {
		t.Fatalf("db should be closed")
	}
}
