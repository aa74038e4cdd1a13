package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almacenix/ledger-api/internal/domain"
	"github.com/almacenix/ledger-api/internal/domain/repository"
)

func TestLevelCursor_IdaYVuelta(t *testing.T) {
	original := repository.LevelCursor{
		ItemID:     "11111111-0000-0000-0000-000000000001",
		LocationID: "22222222-0000-0000-0000-000000000001",
	}

	parsed, err := repository.ParseLevelCursor(original.Encode())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestLevelCursor_VacioEsInicioDeScan(t *testing.T) {
	assert.True(t, repository.LevelCursor{}.IsZero())
	assert.Empty(t, repository.LevelCursor{}.Encode())

	parsed, err := repository.ParseLevelCursor("")
	require.NoError(t, err)
	assert.True(t, parsed.IsZero())
}

func TestLevelCursor_Invalido(t *testing.T) {
	for _, raw := range []string{"solo-item", "|sin-item", "sin-ubicacion|"} {
		_, err := repository.ParseLevelCursor(raw)
		require.Error(t, err, "cursor %q", raw)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}
