// Package persistence implements the embedding index gateway on SQLite.
package persistence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/docvec/docvec/domain/index"
)

// embeddingTableName is the constant name of the embeddings table.
const embeddingTableName = "docvec_embeddings"

// Float64Slice stores a []float64 as JSON in SQLite.
type Float64Slice []float64

// Scan implements sql.Scanner for reading JSON from SQLite.
func (f *Float64Slice) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Float64Slice", value)
	}

	return json.Unmarshal(data, f)
}

// Value implements driver.Valuer for writing JSON to SQLite.
func (f Float64Slice) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// EmbeddingModel is the GORM model for one stored embedding record.
type EmbeddingModel struct {
	ID          string       `gorm:"column:id;primaryKey"`
	Text        string       `gorm:"column:text;not null"`
	Embedding   Float64Slice `gorm:"column:embedding;type:json;not null"`
	FilePath    string       `gorm:"column:file_path;index;not null"`
	ContentHash string       `gorm:"column:content_hash"`
}

// TableName implements the GORM table name convention.
func (EmbeddingModel) TableName() string { return embeddingTableName }

// toModel converts a domain record into its GORM model.
func toModel(r index.Record) EmbeddingModel {
	return EmbeddingModel{
		ID:          r.ID(),
		Text:        r.Text(),
		Embedding:   Float64Slice(r.Vector()),
		FilePath:    r.FilePath(),
		ContentHash: r.ContentHash(),
	}
}
