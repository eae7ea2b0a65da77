package leaderboard

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketEntries = []byte("entries")
	bucketRanking = []byte("ranking")
)

// BoltStore persists entries in a bbolt file. Entries are msgpack encoded and
// keyed by id; a second bucket keeps them in table order.
type BoltStore struct {
	db  *bolt.DB
	now func() time.Time
}

// OpenBoltStore opens or creates the database at path.
func OpenBoltStore(path string, now func() time.Time) (*BoltStore, error) {
	if now == nil {
		now = time.Now
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open leaderboard db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketEntries); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketRanking)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create leaderboard buckets: %w", err)
	}
	return &BoltStore{db: db, now: now}, nil
}

func (s *BoltStore) Add(ctx context.Context, e Entry) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	e.Rank = 0
	e.CreatedAt = s.now().UTC()

	err := s.db.Update(func(tx *bolt.Tx) error {
		entries := tx.Bucket(bucketEntries)
		id, err := entries.NextSequence()
		if err != nil {
			return err
		}
		e.ID = id

		data, err := msgpack.Marshal(&e)
		if err != nil {
			return err
		}
		if err := entries.Put(idKey(id), data); err != nil {
			return err
		}
		return tx.Bucket(bucketRanking).Put(rankKey(e), idKey(id))
	})
	if err != nil {
		return Entry{}, fmt.Errorf("add entry: %w", err)
	}
	return e, nil
}

func (s *BoltStore) Top(ctx context.Context, n int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Entry, 0, n)
	err := s.db.View(func(tx *bolt.Tx) error {
		entries := tx.Bucket(bucketEntries)
		c := tx.Bucket(bucketRanking).Cursor()
		for k, id := c.First(); k != nil && len(out) < n; k, id = c.Next() {
			data := entries.Get(id)
			if data == nil {
				return errors.New("ranking points at a missing entry")
			}
			var e Entry
			if err := msgpack.Unmarshal(data, &e); err != nil {
				return err
			}
			e.CreatedAt = e.CreatedAt.UTC()
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read top entries: %w", err)
	}
	return out, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func idKey(id uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, id)
}

// rankKey sorts bytewise in table order: inverted score, creation time, id.
func rankKey(e Entry) []byte {
	key := make([]byte, 0, 20)
	key = binary.BigEndian.AppendUint32(key, uint32(MaxScore-e.Score))
	key = binary.BigEndian.AppendUint64(key, uint64(e.CreatedAt.UnixNano()))
	return binary.BigEndian.AppendUint64(key, e.ID)
}

var _ Store = (*BoltStore)(nil)
