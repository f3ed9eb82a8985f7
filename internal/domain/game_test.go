package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper to apply a sequence of alternating moves starting with X
func playMoves(t *testing.T, g Grid, moves []int) Grid {
	t.Helper()
	player := X
	for i, m := range moves {
		next, err := ApplyMove(g, m, player)
		require.NoErrorf(t, err, "move %d (%d) failed", i, m)
		g = next
		player = player.Opponent()
	}
	return g
}

func TestApplyMoveChangesOnlyTarget(t *testing.T) {
	var g Grid
	g[4] = O
	for i := range g {
		if g[i] != Empty {
			continue
		}
		for _, p := range []Cell{X, O} {
			next, err := ApplyMove(g, i, p)
			require.NoError(t, err)
			for j := range next {
				if j == i {
					assert.Equal(t, p, next[j])
				} else {
					assert.Equal(t, g[j], next[j], "cell %d changed", j)
				}
			}
		}
	}
	// input untouched
	assert.Equal(t, Grid{4: O}, g)
}

func TestApplyMoveOccupied(t *testing.T) {
	g := playMoves(t, Grid{}, []int{0, 4})
	for _, i := range []int{0, 4} {
		_, err := ApplyMove(g, i, X)
		require.ErrorIs(t, err, ErrCellOccupied)
	}
}

func TestApplyMoveOutOfBounds(t *testing.T) {
	for _, i := range []int{-1, 9, 42} {
		_, err := ApplyMove(Grid{}, i, X)
		require.ErrorIs(t, err, ErrOutOfBounds)
	}
}

func TestApplyMoveInvalidPlayer(t *testing.T) {
	_, err := ApplyMove(Grid{}, 0, Empty)
	require.ErrorIs(t, err, ErrInvalidPlayer)
}

func TestApplyMoveGameOver(t *testing.T) {
	t.Run("after win", func(t *testing.T) {
		// Given: X wins on the top row
		g := playMoves(t, Grid{}, []int{0, 3, 1, 4, 2})
		require.Equal(t, Win, Evaluate(g).Status)

		// Then: every cell is rejected, empty or not
		for i := range g {
			_, err := ApplyMove(g, i, O)
			require.ErrorIs(t, err, ErrGameOver, "cell %d", i)
		}
	})

	t.Run("after draw", func(t *testing.T) {
		g := Grid{X, X, O, O, O, X, X, O, X}
		require.Equal(t, Draw, Evaluate(g).Status)
		_, err := ApplyMove(g, 0, X)
		require.ErrorIs(t, err, ErrGameOver)
	})
}

func TestEvaluateWinLines(t *testing.T) {
	for _, p := range []Cell{X, O} {
		for _, ln := range Lines {
			var g Grid
			for _, i := range ln {
				g[i] = p
			}
			out := Evaluate(g)
			require.Equal(t, Win, out.Status)
			assert.Equal(t, p, out.Winner)
			assert.Equal(t, ln, out.Line)
			for _, i := range ln {
				assert.True(t, out.Contains(i))
			}
		}
	}
}

func TestEvaluateFirstLineWins(t *testing.T) {
	// top row and left column are both uniform; rows come first
	g := Grid{X, X, X, X, O, O, X, O, O}
	out := Evaluate(g)
	require.Equal(t, Win, out.Status)
	assert.Equal(t, [3]int{0, 1, 2}, out.Line)
}

func TestEvaluateDraw(t *testing.T) {
	// X: 0,1,5,6,8  O: 2,3,4,7
	g := Grid{X, X, O, O, O, X, X, O, X}
	out := Evaluate(g)
	assert.Equal(t, Draw, out.Status)
	assert.Equal(t, Empty, out.Winner)
	assert.False(t, out.Contains(0))
}

func TestEvaluateInProgress(t *testing.T) {
	assert.Equal(t, InProgress, Evaluate(Grid{}).Status)
	g := playMoves(t, Grid{}, []int{0, 1, 2, 4, 3, 5, 7, 6})
	out := Evaluate(g)
	assert.Equal(t, InProgress, out.Status)
	assert.False(t, out.Decided())
}

func TestWinScenarioDiagonal(t *testing.T) {
	g := playMoves(t, Grid{}, []int{0, 1, 4, 2, 8})
	out := Evaluate(g)
	require.Equal(t, Outcome{Status: Win, Winner: X, Line: [3]int{0, 4, 8}}, out)
	_, err := ApplyMove(g, 3, O)
	require.ErrorIs(t, err, ErrGameOver)
}

func TestChangedCell(t *testing.T) {
	g := Grid{}
	next, err := ApplyMove(g, 7, X)
	require.NoError(t, err)
	assert.Equal(t, 7, ChangedCell(g, next))
	assert.Equal(t, -1, ChangedCell(next, next))
}

func TestRowColRoundTrip(t *testing.T) {
	for i := 0; i < Size; i++ {
		r, c := RowCol(i)
		got, err := IndexOf(r, c)
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
	_, err := IndexOf(3, 0)
	require.ErrorIs(t, err, ErrOutOfBounds)
}
