package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var bucketRecords = []byte("records")

// BoltStore implements Store using BoltDB.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens or creates a BoltDB database.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRecords)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) ListRecords() ([]*Record, error) {
	var records []*Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		if b == nil {
			return nil // no bucket = no records
		}
		records = make([]*Record, 0, b.Stats().KeyN)
		return b.ForEach(func(k, v []byte) error {
			rec, err := decodeRecord(k, v)
			if err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}

func (s *BoltStore) GetRecord(id string) (*Record, error) {
	key, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var rec *Record
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucketRecords)
		}
		data := b.Get(key[:])
		if data == nil {
			return fmt.Errorf("record %s: %w", id, ErrNotFound)
		}
		rec, err = decodeRecord(key[:], data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *BoltStore) CreateRecord(in RecordInput) (*Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	// V7 identifiers sort by creation time, so bucket order is insertion order.
	key, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}
	rec := &Record{ID: key.String()}
	in.Apply(rec)

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucketRecords)
		}
		return putRecord(b, key, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *BoltStore) UpdateRecord(id string, in RecordInput) (*Record, error) {
	key, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var rec *Record
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucketRecords)
		}
		data := b.Get(key[:])
		if data == nil {
			return fmt.Errorf("record %s: %w", id, ErrNotFound)
		}
		rec, err = decodeRecord(key[:], data)
		if err != nil {
			return err
		}
		in.Apply(rec)
		return putRecord(b, key, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *BoltStore) DeleteRecord(id string) error {
	key, err := ParseID(id)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucketRecords)
		}
		return b.Delete(key[:])
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func putRecord(b *bolt.Bucket, key uuid.UUID, rec *Record) error {
	data, err := json.Marshal(recordStorage{Name: rec.Name, Age: rec.Age, City: rec.City})
	if err != nil {
		return err
	}
	return b.Put(key[:], data)
}

func decodeRecord(k, v []byte) (*Record, error) {
	key, err := uuid.FromBytes(k)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	var st recordStorage
	if err := json.Unmarshal(v, &st); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", key, err)
	}
	return &Record{ID: key.String(), Name: st.Name, Age: st.Age, City: st.City}, nil
}
