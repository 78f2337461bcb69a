package tabular

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAbsent(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, ErrAbsent)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	table := &Table{
		Header: []string{"Product_ID", "Product_Name", "Stock"},
		Rows: []Row{
			{"Product_ID": "P-1", "Product_Name": "Laptop Dell", "Stock": "12"},
			{"Product_ID": "P-2", "Product_Name": "Papier A4", "Stock": "3,5"},
		},
	}
	require.NoError(t, table.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, table.Header, loaded.Header)
	require.Len(t, loaded.Rows, 2)
	require.Equal(t, "Laptop Dell", loaded.Rows[0].Get("Product_Name"))

	stock, ok := loaded.Rows[1].Float("Stock")
	require.True(t, ok)
	require.InDelta(t, 3.5, stock, 0.0001)
}

func TestAppendRejectsDuplicateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	header := []string{"order_id", "product_name"}

	require.NoError(t, Append(path, header, Row{"order_id": "ORD-1", "product_name": "Monitor"}, "order_id"))
	require.NoError(t, Append(path, header, Row{"order_id": "ORD-2", "product_name": "Toner"}, "order_id"))

	err := Append(path, header, Row{"order_id": "ORD-1", "product_name": "Monitor"}, "order_id")
	require.ErrorIs(t, err, ErrDuplicateKey)

	table, err := Load(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
}

func TestRowIntToleratesFloatFormat(t *testing.T) {
	row := Row{"lead": "7.0", "bad": "n/a"}

	v, ok := row.Int("lead")
	require.True(t, ok)
	require.Equal(t, 7, v)

	_, ok = row.Int("bad")
	require.False(t, ok)

	_, ok = row.Int("missing")
	require.False(t, ok)
}
