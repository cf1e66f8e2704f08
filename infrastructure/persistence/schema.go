package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/docvec/docvec/internal/database"
	"gorm.io/gorm"
)

// schemaVersion is the current embeddings table layout version. It is
// persisted in the meta table; a stored version that differs means the
// table was written by an incompatible release and must be rebuilt.
const schemaVersion = 1

const schemaVersionKey = "schema_version"

// MetaModel is the GORM model for store metadata key/value pairs.
type MetaModel struct {
	Key   string `gorm:"column:key;primaryKey"`
	Value string `gorm:"column:value;not null"`
}

// TableName implements the GORM table name convention.
func (MetaModel) TableName() string { return "docvec_meta" }

// ensureSchema migrates the meta and embeddings tables to the current
// version. An incompatible stored version destructively recreates the
// embeddings table: every existing vector is dropped and must be
// recomputed. That is deliberate and loudly logged rather than silent.
func ensureSchema(db database.Database, logger *slog.Logger) error {
	gdb := db.GORM()

	if err := gdb.AutoMigrate(&MetaModel{}); err != nil {
		return fmt.Errorf("migrate meta table: %w", err)
	}

	stored, err := storedSchemaVersion(gdb)
	if err != nil {
		return err
	}

	if stored != nil && *stored != schemaVersion {
		logger.Warn("incompatible embeddings schema, dropping and recreating table — all stored vectors are lost and will be recomputed",
			"stored_version", *stored,
			"current_version", schemaVersion,
		)
		if err := gdb.Migrator().DropTable(&EmbeddingModel{}); err != nil {
			return fmt.Errorf("drop incompatible embeddings table: %w", err)
		}
	}

	if err := gdb.AutoMigrate(&EmbeddingModel{}); err != nil {
		return fmt.Errorf("migrate embeddings table: %w", err)
	}

	if stored == nil || *stored != schemaVersion {
		if err := writeSchemaVersion(gdb); err != nil {
			return err
		}
	}

	return nil
}

// storedSchemaVersion reads the persisted schema version, or nil when the
// marker has never been written (fresh store).
func storedSchemaVersion(gdb *gorm.DB) (*int, error) {
	var meta MetaModel
	err := gdb.Where("key = ?", schemaVersionKey).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read schema version: %w", err)
	}

	version, err := strconv.Atoi(meta.Value)
	if err != nil {
		return nil, fmt.Errorf("parse schema version %q: %w", meta.Value, err)
	}
	return &version, nil
}

func writeSchemaVersion(gdb *gorm.DB) error {
	meta := MetaModel{Key: schemaVersionKey, Value: strconv.Itoa(schemaVersion)}
	if err := gdb.Save(&meta).Error; err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}
