package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rentals-api/config"
	"rentals-api/domain"
)

func TestDialectorFor(t *testing.T) {
	tests := []struct {
		driver string
		name   string
	}{
		{"", "mysql"},
		{"mysql", "mysql"},
		{"postgres", "postgres"},
		{"sqlite", "sqlite"},
	}
	for _, tt := range tests {
		d, err := dialectorFor(config.DBConfig{Driver: tt.driver, Host: "db", Port: "1", User: "u", Name: "rentals"})
		require.NoError(t, err, tt.driver)
		assert.Equal(t, tt.name, d.Name())
	}

	_, err := dialectorFor(config.DBConfig{Driver: "oracle"})
	assert.Error(t, err)
}

// openMemory goes through Open so the sqlite pool settings are exercised.
func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(config.DBConfig{Driver: "sqlite", URL: "file:seed?mode=memory&cache=shared&_foreign_keys=on"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, Migrate(db))
	return db
}

func TestSeed_KeepsExistingRows(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Seed(db))
	require.NoError(t, Seed(db))

	var facilities, methods int64
	require.NoError(t, db.Model(&domain.Facility{}).Count(&facilities).Error)
	require.NoError(t, db.Model(&domain.PaymentMethod{}).Count(&methods).Error)
	assert.EqualValues(t, len(defaultFacilities), facilities)
	assert.EqualValues(t, len(defaultPaymentMethods), methods)
}
