package types

import (
	"testing"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	"github.com/stretchr/testify/require"
)

func TestOrderWarningsValueScan(t *testing.T) {
	var empty OrderWarnings
	v, err := empty.Value()
	require.NoError(t, err)
	require.Equal(t, "[]", v)

	in := OrderWarnings{{Code: enums.OrderWarningInventorySync, ProductName: "Sugar 1kg", Message: "boom"}}
	v, err = in.Value()
	require.NoError(t, err)

	var out OrderWarnings
	require.NoError(t, out.Scan(v))
	require.Equal(t, in, out)

	require.NoError(t, out.Scan([]byte(`[{"code":"stock_clamped","message":"x"}]`)))
	require.Equal(t, enums.OrderWarningStockClamped, out[0].Code)

	require.Error(t, out.Scan(42))
}

func TestBranchInventoryScanAndTotal(t *testing.T) {
	var inv BranchInventory
	require.NoError(t, inv.Scan(`{"main":{"stock":5,"reorderPoint":2,"reorderQuantity":10},"annex":{"stock":3}}`))
	require.Equal(t, 8, inv.Total())

	clone := inv.Clone()
	clone["main"] = BranchStock{Stock: 0}
	require.Equal(t, 5, inv["main"].Stock)

	var nilInv BranchInventory
	v, err := nilInv.Value()
	require.NoError(t, err)
	require.Equal(t, "{}", v)
}
