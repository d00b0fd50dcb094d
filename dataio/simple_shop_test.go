package dataio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimpleShopDeterministic(t *testing.T) {
	a := SimpleShop(GeneratorOptions{Users: 20, Seed: 7})
	b := SimpleShop(GeneratorOptions{Users: 20, Seed: 7})
	require.Equal(t, a.Rows(), b.Rows())
	for r := 0; r < a.Rows(); r++ {
		av, _ := a.StringAt(r, "event")
		bv, _ := b.StringAt(r, "event")
		require.Equal(t, av, bv, "row %d", r)
	}
}

func TestSimpleShopShape(t *testing.T) {
	f := SimpleShop(GeneratorOptions{Users: 10, Seed: 1})
	require.True(t, f.Rows() >= 10, "every user contributes at least one event")
	users := map[string]struct{}{}
	for r := 0; r < f.Rows(); r++ {
		u, ok := f.StringAt(r, "user_id")
		require.True(t, ok)
		users[u] = struct{}{}
		ev, ok := f.StringAt(r, "event")
		require.True(t, ok)
		require.NotEmpty(t, ev)
		_, ok = f.TimeAt(r, "timestamp")
		require.True(t, ok)
	}
	require.Len(t, users, 10)
}
