// Package storage holds the bot's optional persistence: the PostgreSQL match
// archive (GORM) and the Redis-backed event channel and role cache.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"footybot/backend/internal/config"
	"footybot/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrArchiveDisabled is returned by archive queries when no database is configured.
var ErrArchiveDisabled = errors.New("match archive is not configured")

// Archive reads and writes closed rounds.
type Archive interface {
	ArchiveMatch(ctx context.Context, record *models.MatchRecord) error
	RecentMatches(ctx context.Context, chatID int64, limit int) ([]models.MatchRecord, error)
}

var _ Archive = (*Service)(nil)

// Service groups the database and Redis handles. Either may be nil.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Migrate creates or updates the archive tables.
func (s *Service) Migrate() error {
	if s.DB == nil {
		return ErrArchiveDisabled
	}
	if err := s.DB.AutoMigrate(&models.MatchRecord{}, &models.TeamRecord{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// EventChannel is the Redis channel carrying a chat's roster events.
func EventChannel(chatID int64) string {
	return config.RedisPrefix + ":events:" + strconv.FormatInt(chatID, 10)
}

// RoleKey is the Redis key caching a user's role in a chat.
func RoleKey(chatID, userID int64) string {
	return config.RedisPrefix + ":role:" + strconv.FormatInt(chatID, 10) + ":" + strconv.FormatInt(userID, 10)
}
