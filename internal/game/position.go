package game

import (
	"sort"
	"strings"
)

// Occupied reports whether a piece sits on the square.
func (p Position) Occupied(sq string) bool {
	_, ok := p[sq]
	return ok
}

// Clone returns an independent copy of the position.
func (p Position) Clone() Position {
	out := make(Position, len(p))
	for sq, piece := range p {
		out[sq] = piece
	}
	return out
}

// Apply returns the position after moving the piece on source to
// destination, capturing whatever was there. It performs no legality
// checking; the server is the authority.
func (p Position) Apply(source, destination string) Position {
	out := p.Clone()
	piece, ok := out[source]
	if !ok {
		return out
	}
	delete(out, source)
	out[destination] = piece
	return out
}

// Equal reports whether two positions place the same pieces on the
// same squares.
func (p Position) Equal(o Position) bool {
	if len(p) != len(o) {
		return false
	}
	for sq, piece := range p {
		if o[sq] != piece {
			return false
		}
	}
	return true
}

// Encode renders the position as a canonical string, cheap to compare
// against a cached copy to decide whether anything changed.
func (p Position) Encode() string {
	squares := make([]string, 0, len(p))
	for sq := range p {
		squares = append(squares, sq)
	}
	sort.Strings(squares)
	var b strings.Builder
	for i, sq := range squares {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sq)
		b.WriteByte('=')
		b.WriteString(p[sq])
	}
	return b.String()
}
