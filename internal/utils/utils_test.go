package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsPGUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	assert.True(t, IsPGUniqueViolation(unique))
	assert.True(t, IsPGUniqueViolation(fmt.Errorf("insert: %w", unique)))

	assert.False(t, IsPGUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsPGUniqueViolation(errors.New("plain")))
	assert.False(t, IsPGUniqueViolation(nil))
}
