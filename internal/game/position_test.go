package game

import "testing"

func TestApplyMovesPiece(t *testing.T) {
	p := Position{"e2": "wP", "e7": "bP"}
	q := p.Apply("e2", "e4")
	if q.Occupied("e2") {
		t.Fatalf("source square still occupied after move")
	}
	if q["e4"] != "wP" {
		t.Fatalf("expected wP on e4, got %q", q["e4"])
	}
	if p["e2"] != "wP" {
		t.Fatalf("original position mutated")
	}
}

func TestApplyCaptures(t *testing.T) {
	p := Position{"d4": "wP", "e5": "bP"}
	q := p.Apply("d4", "e5")
	if q["e5"] != "wP" {
		t.Fatalf("expected capture to leave wP on e5, got %q", q["e5"])
	}
	if len(q) != 1 {
		t.Fatalf("expected one piece after capture, got %d", len(q))
	}
}

func TestEqual(t *testing.T) {
	a := Position{"e2": "wP", "e8": "bK"}
	b := Position{"e8": "bK", "e2": "wP"}
	if !a.Equal(b) {
		t.Fatalf("expected positions to be equal")
	}
	b["e2"] = "wQ"
	if a.Equal(b) {
		t.Fatalf("expected positions to differ")
	}
}

func TestEncodeIsCanonical(t *testing.T) {
	a := Position{"e2": "wP", "a1": "wR"}
	b := Position{"a1": "wR", "e2": "wP"}
	if a.Encode() != b.Encode() {
		t.Fatalf("encodings differ for equal positions: %q vs %q", a.Encode(), b.Encode())
	}
	if a.Encode() == (Position{"a1": "wR"}).Encode() {
		t.Fatalf("encodings collide for different positions")
	}
}

func TestPieceColor(t *testing.T) {
	if PieceColor("wP") != White {
		t.Fatalf("wP should be white")
	}
	if PieceColor("bK") != Black {
		t.Fatalf("bK should be black")
	}
}
