package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almacenix/ledger-api/internal/domain"
	"github.com/almacenix/ledger-api/internal/domain/entity"
)

func newMovement(t *testing.T, mt entity.MovementType, qty int64) *entity.StockMovement {
	t.Helper()
	rt := entity.ReferenceTypeAdjustment
	switch mt {
	case entity.MovementTypeInbound:
		rt = entity.ReferenceTypePurchaseOrder
	case entity.MovementTypeOutbound:
		rt = entity.ReferenceTypeSalesOrder
	case entity.MovementTypeInitial:
		rt = entity.ReferenceTypeInitial
	case entity.MovementTypeTransfer:
		rt = entity.ReferenceTypeTransfer
	}
	m, err := entity.NewStockMovement(testTenantID, testItemID, testLocationID,
		mt, decimal.NewFromInt(qty), rt, "", "", "")
	require.NoError(t, err)
	return m
}

func TestNewStockLevel_EmpiezaEnCero(t *testing.T) {
	l := entity.NewStockLevel(testTenantID, testItemID, testLocationID)
	assert.True(t, l.QuantityOnHand.IsZero())
	assert.Empty(t, l.LastMovementID)
}

func TestApplyMovement_SumaYActualiza(t *testing.T) {
	l := entity.NewStockLevel(testTenantID, testItemID, testLocationID)

	in := newMovement(t, entity.MovementTypeInitial, 100)
	require.NoError(t, l.ApplyMovement(in))
	assert.True(t, l.QuantityOnHand.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, in.ID, l.LastMovementID)

	out := newMovement(t, entity.MovementTypeOutbound, -30)
	require.NoError(t, l.ApplyMovement(out))
	assert.True(t, l.QuantityOnHand.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, out.ID, l.LastMovementID, "debe apuntar al último movimiento aplicado")
}

// Un movimiento de otro par (o de otro tenant) no aplica a este nivel.
func TestApplyMovement_IdentidadNoCoincide(t *testing.T) {
	l := entity.NewStockLevel(testTenantID, "otro-item", testLocationID)
	m := newMovement(t, entity.MovementTypeInbound, 10)

	err := l.ApplyMovement(m)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.True(t, l.QuantityOnHand.IsZero(), "el nivel no debe mutar ante el rechazo")
	assert.Empty(t, l.LastMovementID)

	otherTenant := entity.NewStockLevel("otro-tenant", testItemID, testLocationID)
	err = otherTenant.ApplyMovement(m)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestApplyMovement_RechazaNegativo(t *testing.T) {
	l := entity.NewStockLevel(testTenantID, testItemID, testLocationID)
	require.NoError(t, l.ApplyMovement(newMovement(t, entity.MovementTypeInitial, 20)))

	err := l.ApplyMovement(newMovement(t, entity.MovementTypeOutbound, -30))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNegativeStock)
	assert.True(t, l.QuantityOnHand.Equal(decimal.NewFromInt(20)),
		"ante el rechazo la proyección conserva el valor previo")
}

// adjustment es el único tipo que puede dejar la proyección negativa.
func TestApplyMovement_AjustePermiteNegativo(t *testing.T) {
	l := entity.NewStockLevel(testTenantID, testItemID, testLocationID)
	require.NoError(t, l.ApplyMovement(newMovement(t, entity.MovementTypeInitial, 5)))

	adj := newMovement(t, entity.MovementTypeAdjustment, -8)
	require.NoError(t, l.ApplyMovement(adj))
	assert.True(t, l.QuantityOnHand.Equal(decimal.NewFromInt(-3)))
	assert.Equal(t, adj.ID, l.LastMovementID)
}
