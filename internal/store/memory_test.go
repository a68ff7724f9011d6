package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/rpsplus/internal/game"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	g := game.New("m1")
	_, err := g.PlayRound("rock", game.Fixed(game.MoveScissors))
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, g))

	got, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, g, got)

	got.UserScore = 99
	again, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, 1, again.UserScore, "Get must return a copy")
}

func TestMemoryStore_UpdateCreatesMissing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.Update(ctx, "fresh", func(g *game.Game) error {
		require.Equal(t, "fresh", g.ID)
		require.Zero(t, g.Round)
		_, err := g.PlayRound("paper", game.Fixed(game.MoveRock))
		return err
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, "fresh")
	require.NoError(t, err)
	require.Equal(t, 1, got.Round)
	require.Equal(t, 1, got.UserScore)
}

func TestMemoryStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Update(ctx, "m", func(g *game.Game) error {
		_, err := g.PlayRound("rock", game.Fixed(game.MovePaper))
		return err
	}))
	require.NoError(t, s.Save(ctx, game.New("m")))

	got, err := s.Get(ctx, "m")
	require.NoError(t, err)
	require.Zero(t, got.Round)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()
	require.ErrorIs(t, s.Save(ctx, game.New("m")), context.Canceled)
	require.ErrorIs(t, s.Update(ctx, "m", func(*game.Game) error { return nil }), context.Canceled)
	_, err := s.Get(ctx, "m")
	require.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_UpdateSerializesPerMatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := map[error]int{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Update(ctx, "shared", func(g *game.Game) error {
				_, err := g.PlayRound("rock", game.Fixed(game.MoveRock))
				return err
			})
			mu.Lock()
			results[err]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, game.RoundLimit, results[nil])
	require.Equal(t, workers-game.RoundLimit, results[game.ErrGameOver])

	got, err := s.Get(ctx, "shared")
	require.NoError(t, err)
	require.Equal(t, game.RoundLimit, got.Round)
	require.Len(t, got.History, game.RoundLimit)
}
