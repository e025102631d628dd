package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Table runs column-equality operations on a model's table without knowing
// its Go type. The cascade engine walks the dependency graph through it.
type Table struct {
	db     *gorm.DB
	model  any
	entity string
}

// NewTable binds model (a pointer to a zero value, e.g. &models.Quote{}).
func NewTable(db *gorm.DB, model any, entity string) *Table {
	return &Table{db: db, model: model, entity: entity}
}

// CountWhere counts rows whose column equals id.
func (t *Table) CountWhere(ctx context.Context, column string, id uuid.UUID) (int64, error) {
	var n int64
	err := t.db.WithContext(ctx).Model(t.model).Where(column+" = ?", id).Count(&n).Error
	if err != nil {
		return 0, Translate(t.entity, "count "+t.entity, err)
	}
	return n, nil
}

// IDsWhere returns the ids of rows whose column equals id.
func (t *Table) IDsWhere(ctx context.Context, column string, id uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := t.db.WithContext(ctx).Model(t.model).Where(column+" = ?", id).Order("created_at").Pluck("id", &ids).Error
	if err != nil {
		return nil, Translate(t.entity, "list "+t.entity, err)
	}
	return ids, nil
}

// DeleteWhere deletes rows whose column equals id and reports how many.
func (t *Table) DeleteWhere(ctx context.Context, column string, id uuid.UUID) (int64, error) {
	res := t.db.WithContext(ctx).Where(column+" = ?", id).Delete(t.model)
	if res.Error != nil {
		return 0, Translate(t.entity, "delete "+t.entity, res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteByID deletes the row with id. A missing row is reported as not found.
func (t *Table) DeleteByID(ctx context.Context, id uuid.UUID) error {
	n, err := t.DeleteWhere(ctx, "id", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return Translate(t.entity, "delete "+t.entity, gorm.ErrRecordNotFound)
	}
	return nil
}

// Exists reports whether a row with id is present.
func (t *Table) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := t.CountWhere(ctx, "id", id)
	return n > 0, err
}
