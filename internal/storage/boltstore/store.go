// Package boltstore is the embedded visitor store: one nested bucket per visitor.
package boltstore

import (
	"context"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"transfers/internal/storage"
)

const bucketVisitors = "visitors"

var tracer = otel.GetTracerProvider().Tracer("transfers/internal/storage/boltstore")

type Store struct {
	db  *bolt.DB
	Now func() time.Time
}

func New(db *bolt.DB) (*Store, error) {
	return &Store{db: db}, db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketVisitors))
		return err
	})
}

func (s *Store) Get(ctx context.Context, visitor, key string) ([]byte, error) {
	_, span := tracer.Start(ctx, "Get")
	defer span.End()
	span.SetAttributes(attribute.String("key", key))

	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		vb := tx.Bucket([]byte(bucketVisitors)).Bucket([]byte(visitor))
		if vb == nil {
			return storage.ErrNotFound
		}
		v := vb.Get([]byte(key))
		if v == nil {
			return storage.ErrNotFound
		}
		// bolt values are only valid inside the transaction
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

func (s *Store) Put(ctx context.Context, visitor, key string, value []byte) error {
	_, span := tracer.Start(ctx, "Put")
	defer span.End()
	span.SetAttributes(attribute.String("key", key))

	return s.db.Update(func(tx *bolt.Tx) error {
		vb, err := tx.Bucket([]byte(bucketVisitors)).CreateBucketIfNotExists([]byte(visitor))
		if err != nil {
			return err
		}
		return vb.Put([]byte(key), value)
	})
}

func (s *Store) Delete(ctx context.Context, visitor string, keys ...string) error {
	_, span := tracer.Start(ctx, "Delete")
	defer span.End()

	return s.db.Update(func(tx *bolt.Tx) error {
		vb := tx.Bucket([]byte(bucketVisitors)).Bucket([]byte(visitor))
		if vb == nil {
			return nil
		}
		for _, k := range keys {
			if err := vb.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Claim stores the claim's expiry under key. bolt runs one write transaction at a time, so the
// check and the write cannot interleave with another claim.
func (s *Store) Claim(ctx context.Context, visitor, key string, ttl time.Duration) (bool, error) {
	_, span := tracer.Start(ctx, "Claim")
	defer span.End()
	span.SetAttributes(attribute.String("key", key))

	now := s.now()
	claimed := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		vb, err := tx.Bucket([]byte(bucketVisitors)).CreateBucketIfNotExists([]byte(visitor))
		if err != nil {
			return err
		}
		if v := vb.Get([]byte(key)); v != nil {
			if until, perr := time.Parse(time.RFC3339Nano, string(v)); perr == nil && now.Before(until) {
				return nil
			}
		}
		claimed = true
		return vb.Put([]byte(key), []byte(now.Add(ttl).Format(time.RFC3339Nano)))
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Store) Close() error {
	return s.db.Close()
}
