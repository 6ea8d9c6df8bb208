package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrations_EmbeddedInOrder(t *testing.T) {
	ms, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, ms)
	require.Equal(t, "0001_init.sql", ms[0].Name)

	for i := 1; i < len(ms); i++ {
		require.Less(t, ms[i-1].Name, ms[i].Name)
	}
	for _, table := range []string{"categories", "inventory", "cart_items", "order_timeline", "payments"} {
		require.True(t, strings.Contains(ms[0].SQL, "CREATE TABLE IF NOT EXISTS "+table), table)
	}
}
