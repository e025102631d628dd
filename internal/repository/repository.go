// Package repository holds the typed CRUD operations every handler and
// workflow goes through. All returned errors belong to the apperr taxonomy.
package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/giardino/internal/apperr"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Options describes how a Repository reads its table.
type Options struct {
	// Entity is the human name used in error messages ("quote").
	Entity string
	// Preloads are the associations loaded by Get.
	Preloads []string
	// PreloadOrder optionally orders a preloaded association, keyed by name.
	PreloadOrder map[string]string
	// SearchColumns are matched case-insensitively against ListParams.Query.
	SearchColumns []string
	// Order is the List ordering, "created_at DESC" when empty.
	Order string
}

// ListParams selects a page of records.
type ListParams struct {
	Page  int
	Limit int
	Query string
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	p.Query = strings.TrimSpace(p.Query)
	return p
}

// Page is one slice of a listing plus the unpaged total.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Repository is a typed gateway to one table.
type Repository[T any] struct {
	db   *gorm.DB
	opts Options
}

func New[T any](db *gorm.DB, opts Options) *Repository[T] {
	if opts.Order == "" {
		opts.Order = "created_at DESC"
	}
	return &Repository[T]{db: db, opts: opts}
}

// WithTx returns a copy bound to tx.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	return &Repository[T]{db: tx, opts: r.opts}
}

func (r *Repository[T]) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Get fetches one record with its configured associations.
func (r *Repository[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	q := r.conn(ctx)
	for _, p := range r.opts.Preloads {
		if order, ok := r.opts.PreloadOrder[p]; ok {
			q = q.Preload(p, func(db *gorm.DB) *gorm.DB { return db.Order(order) })
			continue
		}
		q = q.Preload(p)
	}
	var out T
	if err := q.Where("id = ?", id).First(&out).Error; err != nil {
		return nil, Translate(r.opts.Entity, "get "+r.opts.Entity, err)
	}
	return &out, nil
}

// Exists reports whether a record with id is present.
func (r *Repository[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := r.conn(ctx).Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, Translate(r.opts.Entity, "lookup "+r.opts.Entity, err)
	}
	return n > 0, nil
}

// List returns a page of records, filtered by the search columns when a
// query is given.
func (r *Repository[T]) List(ctx context.Context, p ListParams) (Page[T], error) {
	p = p.normalized()
	q := r.conn(ctx).Model(new(T))
	if p.Query != "" && len(r.opts.SearchColumns) > 0 {
		like := "%" + strings.ToLower(p.Query) + "%"
		conds := make([]string, 0, len(r.opts.SearchColumns))
		args := make([]any, 0, len(r.opts.SearchColumns))
		for _, col := range r.opts.SearchColumns {
			conds = append(conds, "LOWER("+col+") LIKE ?")
			args = append(args, like)
		}
		q = q.Where(strings.Join(conds, " OR "), args...)
	}
	// shared by Count and Find below
	q = q.Session(&gorm.Session{})
	out := Page[T]{Items: []T{}, Page: p.Page, Limit: p.Limit}
	if err := q.Count(&out.Total).Error; err != nil {
		return out, Translate(r.opts.Entity, "count "+r.opts.Entity, err)
	}
	err := q.Order(r.opts.Order).Limit(p.Limit).Offset((p.Page - 1) * p.Limit).Find(&out.Items).Error
	if err != nil {
		return out, Translate(r.opts.Entity, "list "+r.opts.Entity, err)
	}
	return out, nil
}

// Create inserts v. Associations are left alone; children go through their
// own repository.
func (r *Repository[T]) Create(ctx context.Context, v *T) error {
	err := r.conn(ctx).Omit(clause.Associations).Create(v).Error
	return Translate(r.opts.Entity, "create "+r.opts.Entity, err)
}

// CreateBatch inserts all rows in one statement. An empty batch is a no-op.
func (r *Repository[T]) CreateBatch(ctx context.Context, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.conn(ctx).Omit(clause.Associations).Create(&rows).Error
	return Translate(r.opts.Entity, "create "+r.opts.Entity+" batch", err)
}

// Update sets the given columns on the record with id.
func (r *Repository[T]) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return apperr.Validation("no fields to update", nil)
	}
	res := r.conn(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return Translate(r.opts.Entity, "update "+r.opts.Entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(r.opts.Entity)
	}
	return nil
}

// Delete removes the record with id.
func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.conn(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return Translate(r.opts.Entity, "delete "+r.opts.Entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(r.opts.Entity)
	}
	return nil
}
