package storage

import (
	"time"

	"github.com/google/uuid"
)

// Game is the persisted state of one match, keyed by the opaque game
// identifier from the wire protocol.
type Game struct {
	ID        string `gorm:"primaryKey"`
	FEN       string
	Status    string
	Ended     bool `gorm:"index"`
	WhiteTime float64
	BlackTime float64
	CreatedAt time.Time
	UpdatedAt time.Time
	Moves     []Move    `gorm:"constraint:OnDelete:CASCADE;"`
	Messages  []Message `gorm:"constraint:OnDelete:CASCADE;"`
}

// Move stores a single accepted move.
type Move struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	GameID    string    `gorm:"index"`
	Number    int
	UCI       string
	Color     string
	CreatedAt time.Time
}

// Message stores a single chat entry.
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	GameID    string    `gorm:"index"`
	Sender    string
	Content   string
	CreatedAt time.Time
}
