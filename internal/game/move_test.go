package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMove(t *testing.T) {
	t.Run("accepts every legal name regardless of case and padding", func(t *testing.T) {
		for _, m := range Moves {
			s := string(m)
			for _, in := range []string{s, strings.ToUpper(s), " " + s + " ", "\t" + strings.ToUpper(s[:1]) + s[1:] + "\n"} {
				got, err := ParseMove(in)
				require.NoError(t, err, "input %q", in)
				require.Equal(t, m, got, "input %q", in)
			}
		}
	})

	t.Run("rejects unknown input and lists legal moves", func(t *testing.T) {
		for _, in := range []string{"banana", "", "  ", "rocks", "bomb!"} {
			_, err := ParseMove(in)
			require.ErrorIs(t, err, ErrUnknownMove, "input %q", in)
			require.Contains(t, err.Error(), "rock, paper, scissors, bomb")
		}
	})
}

func TestResolve(t *testing.T) {
	cases := []struct {
		user, bot Move
		want      Result
	}{
		{MoveRock, MoveScissors, ResultUserWin},
		{MoveScissors, MovePaper, ResultUserWin},
		{MovePaper, MoveRock, ResultUserWin},
		{MoveScissors, MoveRock, ResultBotWin},
		{MovePaper, MoveScissors, ResultBotWin},
		{MoveRock, MovePaper, ResultBotWin},
		{MoveBomb, MoveRock, ResultUserWin},
		{MoveBomb, MovePaper, ResultUserWin},
		{MoveBomb, MoveScissors, ResultUserWin},
		{MoveRock, MoveBomb, ResultBotWin},
		{MovePaper, MoveBomb, ResultBotWin},
		{MoveScissors, MoveBomb, ResultBotWin},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Resolve(tc.user, tc.bot), "%s vs %s", tc.user, tc.bot)
	}

	t.Run("equal moves draw", func(t *testing.T) {
		for _, m := range Moves {
			require.Equal(t, ResultDraw, Resolve(m, m), "%s vs %s", m, m)
		}
	})

	t.Run("swapping sides mirrors decisive results", func(t *testing.T) {
		mirror := map[Result]Result{ResultUserWin: ResultBotWin, ResultBotWin: ResultUserWin, ResultDraw: ResultDraw}
		for _, a := range Moves {
			for _, b := range Moves {
				require.Equal(t, mirror[Resolve(a, b)], Resolve(b, a), "%s vs %s", a, b)
			}
		}
	})
}
