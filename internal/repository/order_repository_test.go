package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLikePatternEscapes(t *testing.T) {
	require.Equal(t, "%ord-1%", likePattern(" ORD-1 "))
	require.Equal(t, `%50\%\_off\\x%`, likePattern(`50%_off\x`))
}

func TestOrderRepositoryWithoutPool(t *testing.T) {
	repo := NewOrderRepository(nil)

	_, err := repo.ByOrderNumber(context.Background(), "ORD-1")
	require.Error(t, err)
}
