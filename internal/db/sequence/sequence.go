// Package sequence implements the surrogate id allocator. Each entity kind has
// its own counter row; ids are strictly increasing per kind, start at 1 and
// are never handed out twice, even across concurrent writers. The increment
// runs on the caller's transaction, so a rolled back write never publishes
// the allocated id.
package sequence

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entity kinds with their own counters.
const (
	// KindUser is the counter for user ids.
	KindUser = "users"
	// KindTaskGroup is the counter for task group ids.
	KindTaskGroup = "task_groups"
	// KindTask is the counter for task ids.
	KindTask = "tasks"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrUnknownKind is returned for an entity kind without a counter.
	ErrUnknownKind = errors.New("unknown sequence kind")
)

// knownKinds guards against typo'd counter names.
var knownKinds = map[string]struct{}{
	KindUser:      {},
	KindTaskGroup: {},
	KindTask:      {},
}

// Sequence is the counter row backing one entity kind.
type Sequence struct {
	// Name is the entity kind this counter serves.
	Name string `gorm:"primaryKey;size:50"`
	// Value is the last id handed out for this kind.
	Value uint64 `gorm:"not null"`
}

// TableName specifies the database table name for the Sequence model.
func (Sequence) TableName() string {
	return "sequences"
}

// Seed makes sure a counter row exists for every known entity kind.
// Concurrent seeding is safe: existing rows are left untouched.
func Seed(db *gorm.DB) error {
	if db == nil {
		return ErrDBNil
	}

	for kind := range knownKinds {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&Sequence{Name: kind, Value: 0}).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// Next allocates the next id for the given entity kind on the supplied
// transaction. The row-level write lock taken by the UPDATE serializes
// concurrent allocations for the same kind until the transaction ends.
func Next(tx *gorm.DB, kind string) (uint64, error) {
	if tx == nil {
		return 0, ErrDBNil
	}

	if _, ok := knownKinds[kind]; !ok {
		return 0, ErrUnknownKind
	}

	// Make sure the counter row exists even when Seed was never called.
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Sequence{Name: kind, Value: 0}).Error
	if err != nil {
		return 0, err
	}

	result := tx.Model(&Sequence{}).
		Where("name = ?", kind).
		Update("value", gorm.Expr("value + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}

	var seq Sequence
	if err := tx.Where("name = ?", kind).First(&seq).Error; err != nil {
		return 0, err
	}

	return seq.Value, nil
}
