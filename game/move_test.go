package game

import (
	"testing"
)

func TestResolve_SelfPlayIsDraw(t *testing.T) {
	for _, m := range Moves {
		outcome, _ := Resolve(m, m)
		if outcome != Draw {
			t.Errorf("Resolve(%s, %s) = %v, want Draw", m, m, outcome)
		}
	}
}

func TestResolve_AntiSymmetric(t *testing.T) {
	for _, a := range Moves {
		for _, b := range Moves {
			if a == b {
				continue
			}
			ab, _ := Resolve(a, b)
			ba, _ := Resolve(b, a)

			if ab == Draw || ba == Draw {
				t.Errorf("distinct moves %s vs %s must not draw", a, b)
			}
			if (ab == WinA) == (ba == WinA) {
				t.Errorf("Resolve(%s, %s) and Resolve(%s, %s) disagree on the winner", a, b, b, a)
			}
		}
	}
}

func TestResolve_DegreeInvariant(t *testing.T) {
	for _, m := range Moves {
		wins, losses := 0, 0
		for _, other := range Moves {
			if m == other {
				continue
			}
			outcome, _ := Resolve(m, other)
			switch outcome {
			case WinA:
				wins++
			case WinB:
				losses++
			}
		}
		if wins != 2 || losses != 2 {
			t.Errorf("%s beats %d and loses to %d moves, want 2 and 2", m, wins, losses)
		}
	}
}

func TestResolve_KnownEdges(t *testing.T) {
	cases := []struct {
		a, b     Move
		winner   Move
		narrated string
	}{
		{Rock, Scissors, Rock, "Rock crushes Scissors"},
		{Rock, Lizard, Rock, "Rock crushes Lizard"},
		{Paper, Rock, Paper, "Paper covers Rock"},
		{Paper, Spock, Paper, "Paper disproves Spock"},
		{Scissors, Paper, Scissors, "Scissors cuts Paper"},
		{Scissors, Lizard, Scissors, "Scissors decapitates Lizard"},
		{Lizard, Spock, Lizard, "Lizard poisons Spock"},
		{Lizard, Paper, Lizard, "Lizard eats Paper"},
		{Spock, Scissors, Spock, "Spock smashes Scissors"},
		{Spock, Rock, Spock, "Spock vaporizes Rock"},
	}

	for _, c := range cases {
		outcome, edge := Resolve(c.a, c.b)
		if outcome != WinA {
			t.Errorf("Resolve(%s, %s): expected first move to win", c.a, c.b)
		}
		if edge.Winner != c.winner {
			t.Errorf("Resolve(%s, %s): edge winner = %s, want %s", c.a, c.b, edge.Winner, c.winner)
		}
		if edge.String() != c.narrated {
			t.Errorf("Resolve(%s, %s): narration = %q, want %q", c.a, c.b, edge.String(), c.narrated)
		}

		// The reversed call must report the same edge.
		outcome, reversed := Resolve(c.b, c.a)
		if outcome != WinB {
			t.Errorf("Resolve(%s, %s): expected second move to win", c.b, c.a)
		}
		if reversed != edge {
			t.Errorf("Resolve(%s, %s): edge %v differs from forward edge %v", c.b, c.a, reversed, edge)
		}
	}
}

func TestParseMove(t *testing.T) {
	for _, m := range Moves {
		parsed, err := ParseMove(m.String())
		if err != nil {
			t.Fatalf("ParseMove(%q) failed: %v", m.String(), err)
		}
		if parsed != m {
			t.Errorf("ParseMove(%q) = %v, want %v", m.String(), parsed, m)
		}
	}

	if _, err := ParseMove("Well"); err == nil {
		t.Error("ParseMove should reject unknown moves")
	}
}
