package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGatherAllKeepsInputOrder(t *testing.T) {
	items := []int{5, 1, 3, 2, 4}
	results := gatherAll(context.Background(), items, 0, func(ctx context.Context, n int) (int, error) {
		// later inputs finish first
		time.Sleep(time.Duration(n) * 10 * time.Millisecond)
		return n * 10, nil
	})

	require.Len(t, results, len(items))
	for i, g := range results {
		require.Equal(t, items[i], g.In)
		require.Equal(t, items[i]*10, g.Out)
	}
}

func TestGatherAllNeverShortCircuits(t *testing.T) {
	boom := errors.New("boom")
	results := gatherAll(context.Background(), []int{1, 2, 3}, 0, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})

	require.NoError(t, results[0].Err)
	require.ErrorIs(t, results[1].Err, boom)
	require.NoError(t, results[2].Err)
}

func TestGatherAllEmptyInput(t *testing.T) {
	results := gatherAll(context.Background(), nil, 0, func(ctx context.Context, n int) (int, error) {
		t.Fatal("must not run")
		return 0, nil
	})
	require.Empty(t, results)
}
