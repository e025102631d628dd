package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/internal/apperr"
	"github.com/diewo77/giardino/internal/models"
	"github.com/diewo77/giardino/validation"
)

// lineInput is a quote or invoice line as sent by clients. service_id is a
// catalog id, or "custom" / empty for a free-text line. line_total may be
// omitted, in which case it is computed.
type lineInput struct {
	ServiceID   string           `json:"service_id"`
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	LineTotal   *decimal.Decimal `json:"line_total"`
	Position    *int             `json:"position"`
}

type parsedLine struct {
	ServiceID *uuid.UUID
	Line      models.Line
}

// parseLines validates inputs; positions default to offset + index.
func parseLines(inputs []lineInput, offset int, v validation.Violations) []parsedLine {
	out := make([]parsedLine, 0, len(inputs))
	for i, in := range inputs {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }
		serviceID, err := models.ParseServiceRef(in.ServiceID)
		if err != nil {
			v[field("service_id")] = "invalid"
		}
		validation.Required(field("description"), in.Description, v)
		validation.MaxLen(field("description"), in.Description, 500, v)
		validation.PositiveDecimal(field("quantity"), in.Quantity, v)
		validation.NonNegativeDecimal(field("unit_price"), in.UnitPrice, v)

		l := models.Line{
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Position:    offset + i,
		}
		if in.Position != nil {
			l.Position = *in.Position
		}
		l.LineTotal = l.ExpectedTotal()
		if in.LineTotal != nil && !in.LineTotal.Round(2).Equal(l.LineTotal) {
			v[field("line_total")] = "does_not_match_quantity_times_unit_price"
		}
		out = append(out, parsedLine{ServiceID: serviceID, Line: l})
	}
	return out
}

// checkServices flags catalog references that do not exist.
func checkServices(ctx context.Context, db *gorm.DB, lines []parsedLine, v validation.Violations) error {
	var ids []uuid.UUID
	for _, l := range lines {
		if l.ServiceID != nil {
			ids = append(ids, *l.ServiceID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	var found []uuid.UUID
	if err := db.WithContext(ctx).Model(&models.Service{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return apperr.Persistence("lookup services", err)
	}
	known := make(map[uuid.UUID]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	for i, l := range lines {
		if l.ServiceID != nil && !known[*l.ServiceID] {
			v[fmt.Sprintf("items[%d].service_id", i)] = "unknown_service"
		}
	}
	return nil
}

func sumParsed(lines []parsedLine) decimal.Decimal {
	ls := make([]models.Line, 0, len(lines))
	for _, l := range lines {
		ls = append(ls, l.Line)
	}
	return models.SumLines(ls)
}
