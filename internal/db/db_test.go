package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitRequiresDSN(t *testing.T) {
	sqlDB, err := Init(context.Background(), "")
	assert.Nil(t, sqlDB)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
