package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/xid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRecord is the single table behind every collection.
type documentRecord struct {
	Collection string    `gorm:"primaryKey;column:collection;size:64"`
	ID         string    `gorm:"primaryKey;column:id;size:128"`
	Data       string    `gorm:"column:data;type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for GORM.
func (documentRecord) TableName() string {
	return "documents"
}

// GormStore stores documents as JSON rows in a relational database.
// Equality filters are applied after loading the collection.
type GormStore struct {
	db    *gorm.DB
	clock func() time.Time
}

var _ Store = (*GormStore)(nil)

// NewGormStore migrates the documents table and returns a store on db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&documentRecord{}); err != nil {
		return nil, fmt.Errorf("migrating documents table: %w", err)
	}
	return &GormStore{db: db, clock: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *GormStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var rec documentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return Document{}, fmt.Errorf("loading %s/%s: %w", collection, id, err)
	}
	return rec.document()
}

func (s *GormStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	var recs []documentRecord
	if err := s.db.WithContext(ctx).Where("collection = ?", collection).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	out := make([]Document, 0, len(recs))
	for i := range recs {
		doc, err := recs[i].document()
		if err != nil {
			return nil, err
		}
		if matchesAll(doc, filters) {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *GormStore) Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	id := xid.New().String()
	now := s.clock()
	data, err := encodeFields(copyFields(fields, now))
	if err != nil {
		return "", err
	}
	rec := documentRecord{Collection: collection, ID: id, Data: data, CreatedAt: now, UpdatedAt: now}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", fmt.Errorf("inserting into %s: %w", collection, err)
	}
	return id, nil
}

func (s *GormStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	now := s.clock()
	data, err := encodeFields(copyFields(fields, now))
	if err != nil {
		return err
	}
	rec := documentRecord{Collection: collection, ID: id, Data: data, CreatedAt: now, UpdatedAt: now}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *GormStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec documentRecord
		err := tx.Where("collection = ? AND id = ?", collection, id).First(&rec).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
			}
			return fmt.Errorf("loading %s/%s: %w", collection, id, err)
		}
		doc, err := rec.document()
		if err != nil {
			return err
		}
		now := s.clock()
		for k, v := range copyFields(fields, now) {
			doc.Data[k] = v
		}
		data, err := encodeFields(doc.Data)
		if err != nil {
			return err
		}
		return tx.Model(&documentRecord{}).
			Where("collection = ? AND id = ?", collection, id).
			Updates(map[string]interface{}{"data": data, "updated_at": now}).Error
	})
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *documentRecord) document() (Document, error) {
	fields := map[string]interface{}{}
	dec := json.NewDecoder(bytes.NewReader([]byte(r.Data)))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return Document{}, fmt.Errorf("decoding %s/%s: %w", r.Collection, r.ID, err)
	}
	return Document{ID: r.ID, Data: fields}, nil
}

func encodeFields(fields map[string]interface{}) (string, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	return string(b), nil
}
