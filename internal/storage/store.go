package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps a gorm DB and provides helper methods for persisting
// games. A nil *Store is valid and turns every call into a no-op, so
// the in-memory path needs no guards.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// ErrNotFound is returned when a record is not found.
var ErrNotFound = gorm.ErrRecordNotFound

// GameStateUpdate is the post-move state written back per game.
type GameStateUpdate struct {
	FEN       string
	Status    string
	Ended     bool
	WhiteTime float64
	BlackTime float64
}

// EnsureGame inserts the game row if it does not exist yet.
func (s *Store) EnsureGame(ctx context.Context, id string, clock float64) error {
	if s == nil {
		return nil
	}
	row := Game{ID: id, WhiteTime: clock, BlackTime: clock}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// SaveGameState writes the current engine state to the game row.
func (s *Store) SaveGameState(ctx context.Context, id string, upd GameStateUpdate) error {
	if s == nil {
		return nil
	}
	return s.db.WithContext(ctx).Model(&Game{}).Where("id = ?", id).Updates(map[string]any{
		"fen":        upd.FEN,
		"status":     upd.Status,
		"ended":      upd.Ended,
		"white_time": upd.WhiteTime,
		"black_time": upd.BlackTime,
	}).Error
}

// RecordMove inserts a move row for the given game.
func (s *Store) RecordMove(ctx context.Context, gameID string, number int, uci, color string) error {
	if s == nil {
		return nil
	}
	move := Move{GameID: gameID, Number: number, UCI: uci, Color: color}
	return s.db.WithContext(ctx).Create(&move).Error
}

// RecordMessage inserts a chat row for the given game.
func (s *Store) RecordMessage(ctx context.Context, gameID, sender, content string) error {
	if s == nil {
		return nil
	}
	msg := Message{GameID: gameID, Sender: sender, Content: content}
	return s.db.WithContext(ctx).Create(&msg).Error
}

// LoadGame fetches a persisted game with its chat log, or ErrNotFound.
// A nil store never finds anything.
func (s *Store) LoadGame(ctx context.Context, id string) (*Game, error) {
	if s == nil {
		return nil, ErrNotFound
	}
	var row Game
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Where("game_id = ?", id).
		Order("created_at").
		Find(&row.Messages).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
