package storage

import (
	"context"
	"fmt"

	"footybot/backend/internal/logging"
	"footybot/backend/internal/models"

	"gorm.io/gorm"
)

// ArchiveMatch stores a closed round together with its teams.
func (s *Service) ArchiveMatch(ctx context.Context, record *models.MatchRecord) error {
	if s.DB == nil {
		return ErrArchiveDisabled
	}

	if err := s.DB.WithContext(ctx).Create(record).Error; err != nil {
		l := logging.Ctx(ctx)
		l.Error().Err(err).Int64(logging.FieldChatID, record.ChatID).Msg("failed to save match")
		return fmt.Errorf("failed to save match: %w", err)
	}
	return nil
}

// RecentMatches returns up to limit rounds for chatID, newest first, with
// teams in announcement order.
func (s *Service) RecentMatches(ctx context.Context, chatID int64, limit int) ([]models.MatchRecord, error) {
	if s.DB == nil {
		return nil, ErrArchiveDisabled
	}
	if limit <= 0 {
		return []models.MatchRecord{}, nil
	}

	var matches []models.MatchRecord
	err := s.DB.WithContext(ctx).
		Preload("Teams", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Where("chat_id = ?", chatID).
		Order("closed_at desc").
		Limit(limit).
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load matches for chat %d: %w", chatID, err)
	}
	return matches, nil
}
