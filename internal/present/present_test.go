package present

import (
	"math"
	"testing"

	"chessclient/internal/game"
)

func TestSplitEvaluationBalanced(t *testing.T) {
	w, b := SplitEvaluation(0)
	if math.Abs(w-0.5) > 1e-9 || math.Abs(b-0.5) > 1e-9 {
		t.Fatalf("expected equal halves at eval 0, got %v / %v", w, b)
	}
}

func TestSplitEvaluationSumsToOne(t *testing.T) {
	for _, eval := range []float64{-1, -0.5, -0.1, 0, 0.1, 0.5, 1} {
		w, b := SplitEvaluation(eval)
		if math.Abs(w+b-1) > 1e-9 {
			t.Fatalf("weights at eval %v sum to %v", eval, w+b)
		}
	}
}

func TestSplitEvaluationMonotonicForWhite(t *testing.T) {
	prev := -1.0
	for eval := -1.0; eval <= 1.0; eval += 0.125 {
		w, _ := SplitEvaluation(eval)
		if w < prev {
			t.Fatalf("white weight decreased at eval %v: %v < %v", eval, w, prev)
		}
		prev = w
	}
}

func TestHighlightPlanTwoTier(t *testing.T) {
	pos := game.Position{"e5": "bP"}
	marks := HighlightPlan([]string{"e4", "e5"}, pos)
	if marks["e4"] != HighlightMove {
		t.Fatalf("empty square should get a quiet-move mark")
	}
	if marks["e5"] != HighlightCapture {
		t.Fatalf("occupied square should get a capture mark")
	}
}

func TestHighlightPlanEmptyClears(t *testing.T) {
	if marks := HighlightPlan(nil, game.Position{}); len(marks) != 0 {
		t.Fatalf("expected no marks, got %d", len(marks))
	}
}

func TestFormatClock(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "00:00"},
		{65.4, "01:05"},
		{600, "10:00"},
		{-3, "00:00"},
	}
	for _, tc := range cases {
		if got := FormatClock(tc.in); got != tc.want {
			t.Fatalf("FormatClock(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
