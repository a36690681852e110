package pointstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/davecgh/go-xdr/xdr2"
	"github.com/go-sod/kdindex/internal/database"
	"github.com/go-sod/kdindex/internal/geom"
	"github.com/go-sod/kdindex/internal/logging"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const (
	metaBucket = "datasets"
	prefix     = "dataset:"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrEmptyName       = errors.New("dataset name is empty")
	ErrDimMismatch     = errors.New("point has wrong number of coordinates")
)

// Meta describes a stored dataset.
type Meta struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Dims      int       `json:"dims"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
}

// metaRecord is the xdr layout of Meta.
type metaRecord struct {
	ID        [16]byte
	Name      string
	Dims      uint32
	Count     uint64
	CreatedAt int64
}

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

func bucketName(name string) []byte {
	return []byte(prefix + name)
}

func pointKey(i int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(i))
	return key
}

// Save replaces the dataset name with points in a single transaction.
func (db *DB) Save(ctx context.Context, name string, dims int, points []geom.Point) (Meta, error) {
	if strings.TrimSpace(name) == "" {
		return Meta{}, ErrEmptyName
	}
	logger := logging.FromContext(ctx)

	meta := Meta{
		ID:        uuid.New(),
		Name:      name,
		Dims:      dims,
		Count:     len(points),
		CreatedAt: time.Now().UTC(),
	}
	metaBytes, err := encodeMeta(meta)
	if err != nil {
		return Meta{}, err
	}

	var buf bytes.Buffer
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketName(name)) != nil {
			if err := tx.DeleteBucket(bucketName(name)); err != nil {
				return fmt.Errorf("delete bucket: %w", err)
			}
		}
		b, err := tx.CreateBucket(bucketName(name))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		for i, point := range points {
			if len(point) != dims {
				return fmt.Errorf("point %d: %w", i, ErrDimMismatch)
			}
			buf.Reset()
			if _, err := xdr.Marshal(&buf, []float64(point)); err != nil {
				return fmt.Errorf("encode point %d: %w", i, err)
			}
			value := make([]byte, buf.Len())
			copy(value, buf.Bytes())
			if err := b.Put(pointKey(i), value); err != nil {
				return fmt.Errorf("put to bucket error: %w", err)
			}
		}

		mb, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
		if err != nil {
			return fmt.Errorf("unable create datasets bucket: %w", err)
		}
		if err := mb.Put([]byte(name), metaBytes); err != nil {
			return fmt.Errorf("unable put to datasets bucket: %w", err)
		}
		return nil
	}); err != nil {
		return Meta{}, fmt.Errorf("update transaction error: %w", err)
	}

	logger.Infof("dataset %s saved, id: %s, points: %d", name, meta.ID, meta.Count)
	return meta, nil
}

func (db *DB) Load(ctx context.Context, name string) ([]geom.Point, Meta, error) {
	var (
		points []geom.Point
		meta   Meta
	)
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		mb := tx.Bucket([]byte(metaBucket))
		if mb == nil {
			return ErrDatasetNotFound
		}
		raw := mb.Get([]byte(name))
		if raw == nil {
			return ErrDatasetNotFound
		}
		m, err := decodeMeta(raw)
		if err != nil {
			return err
		}
		meta = m

		b := tx.Bucket(bucketName(name))
		if b == nil {
			return ErrDatasetNotFound
		}
		points = make([]geom.Point, 0, meta.Count)
		return b.ForEach(func(k, v []byte) error {
			var coords []float64
			if _, err := xdr.Unmarshal(bytes.NewReader(v), &coords); err != nil {
				return fmt.Errorf("decode point %d: %w", binary.BigEndian.Uint64(k), err)
			}
			points = append(points, geom.Point(coords))
			return nil
		})
	}); err != nil {
		return nil, Meta{}, fmt.Errorf("load dataset %s: %w", name, err)
	}

	logging.FromContext(ctx).Debugf("dataset %s loaded, points: %d", name, len(points))
	return points, meta, nil
}

// List returns the metadata of every dataset ordered by name.
func (db *DB) List(_ context.Context) ([]Meta, error) {
	var metas []Meta
	err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		mb := tx.Bucket([]byte(metaBucket))
		if mb == nil {
			return nil
		}
		return mb.ForEach(func(_, v []byte) error {
			m, err := decodeMeta(v)
			if err != nil {
				return err
			}
			metas = append(metas, m)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].Name < metas[j].Name
	})
	return metas, nil
}

func (db *DB) Delete(ctx context.Context, name string) error {
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		mb := tx.Bucket([]byte(metaBucket))
		if mb == nil || mb.Get([]byte(name)) == nil {
			return ErrDatasetNotFound
		}
		if err := mb.Delete([]byte(name)); err != nil {
			return fmt.Errorf("unable delete: %w", err)
		}
		if tx.Bucket(bucketName(name)) != nil {
			if err := tx.DeleteBucket(bucketName(name)); err != nil {
				return fmt.Errorf("delete bucket: %w", err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("delete dataset %s: %w", name, err)
	}

	logging.FromContext(ctx).Infof("dataset %s deleted", name)
	return nil
}

func encodeMeta(m Meta) ([]byte, error) {
	var buf bytes.Buffer
	rec := metaRecord{
		ID:        m.ID,
		Name:      m.Name,
		Dims:      uint32(m.Dims),
		Count:     uint64(m.Count),
		CreatedAt: m.CreatedAt.UnixNano(),
	}
	if _, err := xdr.Marshal(&buf, &rec); err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeMeta(raw []byte) (Meta, error) {
	var rec metaRecord
	if _, err := xdr.Unmarshal(bytes.NewReader(raw), &rec); err != nil {
		return Meta{}, fmt.Errorf("decode meta: %w", err)
	}
	return Meta{
		ID:        rec.ID,
		Name:      rec.Name,
		Dims:      int(rec.Dims),
		Count:     int(rec.Count),
		CreatedAt: time.Unix(0, rec.CreatedAt).UTC(),
	}, nil
}
