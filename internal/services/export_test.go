package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/diewo77/giardino/internal/dbtest"
	"github.com/diewo77/giardino/internal/models"
)

func TestWriteInvoices(t *testing.T) {
	db := dbtest.Open(t)
	c := dbtest.Client(t, db, "Costa")
	dbtest.Invoice(t, db, "F-2026-0001", c.ID, nil, models.InvoiceLineItem{Line: dbtest.Line("Taglio", "2", "55", 0)})

	var buf bytes.Buffer
	require.NoError(t, NewExporter(db).WriteInvoices(context.Background(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Number", rows[0][0])
	assert.Equal(t, []string{"F-2026-0001", "Anna Costa", "2026-03-10", "2026-04-09", "unpaid", "CHF", "110"}, rows[1])
}
