package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/internal/apperr"
	"github.com/diewo77/giardino/internal/models"
	"github.com/diewo77/giardino/internal/repository"
)

// Entity names a deletable record type.
type Entity string

const (
	EntityClient          Entity = "client"
	EntityService         Entity = "service"
	EntityQuote           Entity = "quote"
	EntityInvoice         Entity = "invoice"
	EntityQuoteLineItem   Entity = "quote line item"
	EntityInvoiceLineItem Entity = "invoice line item"
)

// Rule decides what happens to dependent rows when their parent is deleted.
type Rule int

const (
	// Owned rows are always deleted with the parent.
	Owned Rule = iota
	// CascadeOnRequest rows block the delete unless cascade is requested,
	// in which case each one is deleted through its own graph node.
	CascadeOnRequest
	// Restrict rows always block the delete.
	Restrict
)

// Dependent is an edge of the dependency graph: rows of Entity whose
// Column references the parent.
type Dependent struct {
	Entity Entity
	Column string
	Rule   Rule
	// Hint is appended to the conflict message.
	Hint string
}

// Node describes one entity: its table model and its dependents, in the
// order they are processed.
type Node struct {
	Model      any
	Dependents []Dependent
}

// DependencyGraph maps every entity to its node.
type DependencyGraph map[Entity]Node

// DefaultGraph is the dependency graph of the back-office schema.
func DefaultGraph() DependencyGraph {
	return DependencyGraph{
		EntityClient: {Model: &models.Client{}, Dependents: []Dependent{
			{Entity: EntityInvoice, Column: "client_id", Rule: CascadeOnRequest},
			{Entity: EntityQuote, Column: "client_id", Rule: CascadeOnRequest},
		}},
		EntityQuote: {Model: &models.Quote{}, Dependents: []Dependent{
			{Entity: EntityInvoice, Column: "source_quote_id", Rule: Restrict, Hint: "delete the invoice first"},
			{Entity: EntityQuoteLineItem, Column: "quote_id", Rule: Owned},
		}},
		EntityInvoice: {Model: &models.Invoice{}, Dependents: []Dependent{
			{Entity: EntityInvoiceLineItem, Column: "invoice_id", Rule: Owned},
		}},
		EntityService: {Model: &models.Service{}, Dependents: []Dependent{
			{Entity: EntityQuoteLineItem, Column: "service_id", Rule: Restrict},
			{Entity: EntityInvoiceLineItem, Column: "service_id", Rule: Restrict},
		}},
		EntityQuoteLineItem:   {Model: &models.QuoteLineItem{}},
		EntityInvoiceLineItem: {Model: &models.InvoiceLineItem{}},
	}
}

// Deletable reports whether e may be deleted directly by a caller.
func Deletable(e Entity) bool {
	switch e {
	case EntityClient, EntityService, EntityQuote, EntityInvoice:
		return true
	}
	return false
}

// Blocker describes the dependents that refused a delete.
type Blocker struct {
	Entity Entity `json:"entity"`
	Count  int64  `json:"count"`
}

// Deleter removes entities according to a DependencyGraph.
type Deleter struct {
	db    *gorm.DB
	log   *zap.Logger
	graph DependencyGraph
}

func NewDeleter(db *gorm.DB, log *zap.Logger) *Deleter {
	return &Deleter{db: db, log: log, graph: DefaultGraph()}
}

// WithGraph returns a Deleter walking g instead of the default graph.
func (d *Deleter) WithGraph(g DependencyGraph) *Deleter {
	return &Deleter{db: d.db, log: d.log, graph: g}
}

// Delete removes the entity with id. Restrict dependents always refuse the
// delete; CascadeOnRequest dependents refuse it unless cascade is set. The
// whole delete runs in one transaction, so a refusal deletes nothing.
func (d *Deleter) Delete(ctx context.Context, entity Entity, id uuid.UUID, cascade bool) error {
	if _, ok := d.graph[entity]; !ok || !Deletable(entity) {
		return apperr.Validation(fmt.Sprintf("unknown entity %q", entity), nil)
	}
	if id == uuid.Nil {
		return apperr.Validation("id is required", map[string]string{"id": "required"})
	}
	var removed int
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return d.delete(ctx, tx, entity, id, cascade, &removed)
	})
	if err != nil {
		return err
	}
	d.log.Info("entity deleted",
		zap.String("entity", string(entity)),
		zap.String("id", id.String()),
		zap.Bool("cascade", cascade),
		zap.Int("rows", removed))
	return nil
}

func (d *Deleter) table(tx *gorm.DB, e Entity) (*repository.Table, error) {
	node, ok := d.graph[e]
	if !ok {
		return nil, fmt.Errorf("entity %q missing from dependency graph", e)
	}
	return repository.NewTable(tx, node.Model, string(e)), nil
}

func (d *Deleter) delete(ctx context.Context, tx *gorm.DB, entity Entity, id uuid.UUID, cascade bool, removed *int) error {
	self, err := d.table(tx, entity)
	if err != nil {
		return err
	}
	exists, err := self.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound(string(entity))
	}

	deps := d.graph[entity].Dependents
	if err := d.checkBlockers(ctx, tx, entity, id, cascade, deps); err != nil {
		return err
	}

	for _, dep := range deps {
		depTable, err := d.table(tx, dep.Entity)
		if err != nil {
			return err
		}
		switch dep.Rule {
		case CascadeOnRequest:
			ids, err := depTable.IDsWhere(ctx, dep.Column, id)
			if err != nil {
				return err
			}
			for _, childID := range ids {
				if err := d.delete(ctx, tx, dep.Entity, childID, cascade, removed); err != nil {
					return err
				}
			}
		case Owned:
			n, err := depTable.DeleteWhere(ctx, dep.Column, id)
			if err != nil {
				return err
			}
			*removed += int(n)
		}
	}

	if err := self.DeleteByID(ctx, id); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return apperr.Conflict(fmt.Sprintf("cannot delete %s: it is still referenced by other records", entity), nil)
		}
		return err
	}
	*removed++
	return nil
}

// checkBlockers refuses the delete before anything is removed.
func (d *Deleter) checkBlockers(ctx context.Context, tx *gorm.DB, entity Entity, id uuid.UUID, cascade bool, deps []Dependent) error {
	var blockers []Blocker
	var hints []string
	for _, dep := range deps {
		if dep.Rule == Owned || (dep.Rule == CascadeOnRequest && cascade) {
			continue
		}
		depTable, err := d.table(tx, dep.Entity)
		if err != nil {
			return err
		}
		n, err := depTable.CountWhere(ctx, dep.Column, id)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		blockers = append(blockers, Blocker{Entity: dep.Entity, Count: n})
		if dep.Hint != "" {
			hints = append(hints, dep.Hint)
		}
	}
	if len(blockers) == 0 {
		return nil
	}
	parts := make([]string, 0, len(blockers))
	for _, b := range blockers {
		parts = append(parts, fmt.Sprintf("%d %s(s)", b.Count, b.Entity))
	}
	msg := fmt.Sprintf("cannot delete %s: referenced by %s", entity, strings.Join(parts, " and "))
	if len(hints) > 0 {
		msg += "; " + strings.Join(hints, "; ")
	}
	return apperr.Conflict(msg, blockers)
}
