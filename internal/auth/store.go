package auth

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var lastLoginBucket = []byte("last_login")

// LoginRecord is the most recent successful login for one account.
type LoginRecord struct {
	ID      string    `json:"id"`
	Address string    `json:"address"`
	At      time.Time `json:"at"`
}

// LastLoginStore keeps one LoginRecord per account id in a bbolt file.
type LastLoginStore struct {
	db *bolt.DB
}

func OpenLastLoginStore(dbPath string) (*LastLoginStore, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(lastLoginBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &LastLoginStore{db: db}, nil
}

func (s *LastLoginStore) Close() error {
	return s.db.Close()
}

// Last returns the stored record for id. ok is false when id has never
// logged in.
func (s *LastLoginStore) Last(id string) (rec LoginRecord, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(lastLoginBucket).Get([]byte(id))
		if data == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(data, &rec)
	})
	return rec, ok, err
}

// Record replaces the stored record for rec.ID.
func (s *LastLoginStore) Record(rec LoginRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(lastLoginBucket).Put([]byte(rec.ID), data)
	})
}

// List returns every stored record in key order.
func (s *LastLoginStore) List() ([]LoginRecord, error) {
	var recs []LoginRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(lastLoginBucket).ForEach(func(k, v []byte) error {
			var rec LoginRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			recs = append(recs, rec)
			return nil
		})
	})

	return recs, err
}
