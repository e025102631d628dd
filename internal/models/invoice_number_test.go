package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/giardino/internal/dbtest"
	"github.com/diewo77/giardino/internal/models"
)

func TestNextInvoiceNumber(t *testing.T) {
	db := dbtest.Open(t)
	c := dbtest.Client(t, db, "Bianchi")

	next, err := models.NextInvoiceNumber(db, 2026)
	require.NoError(t, err)
	assert.Equal(t, "F-2026-0001", next)

	dbtest.Invoice(t, db, "F-2026-0001", c.ID, nil)
	dbtest.Invoice(t, db, "F-2025-0042", c.ID, nil)
	next, err = models.NextInvoiceNumber(db, 2026)
	require.NoError(t, err)
	assert.Equal(t, "F-2026-0002", next, "other years are ignored")
}

func TestNextInvoiceNumber_IgnoresNonNumericSuffix(t *testing.T) {
	db := dbtest.Open(t)
	c := dbtest.Client(t, db, "Bianchi")
	dbtest.Invoice(t, db, "F-2026-0001", c.ID, nil)
	dbtest.Invoice(t, db, "F-2026-0001-bis", c.ID, nil)
	dbtest.Invoice(t, db, "F-2026-+7", c.ID, nil)

	next, err := models.NextInvoiceNumber(db, 2026)
	require.NoError(t, err)
	assert.Equal(t, "F-2026-0002", next)
}

func TestNextInvoiceNumber_PastFourDigits(t *testing.T) {
	db := dbtest.Open(t)
	c := dbtest.Client(t, db, "Bianchi")
	dbtest.Invoice(t, db, "F-2026-9999", c.ID, nil)

	next, err := models.NextInvoiceNumber(db, 2026)
	require.NoError(t, err)
	assert.Equal(t, "F-2026-10000", next)

	dbtest.Invoice(t, db, next, c.ID, nil)
	next, err = models.NextInvoiceNumber(db, 2026)
	require.NoError(t, err)
	assert.Equal(t, "F-2026-10001", next)
}
