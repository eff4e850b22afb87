package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type ConversationTurnRepository struct {
	db *gorm.DB
}

func NewConversationTurnRepository(db *gorm.DB) *ConversationTurnRepository {
	return &ConversationTurnRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *ConversationTurnRepository) WithTx(tx *gorm.DB) *ConversationTurnRepository {
	return &ConversationTurnRepository{db: tx}
}

func (r *ConversationTurnRepository) Create(turn *model.ConversationTurn) error {
	if err := r.db.Create(turn).Error; err != nil {
		return fmt.Errorf("create conversation turn failed: %w", err)
	}
	return nil
}

// ListRecentByUserID returns the user's latest turns, newest first. Ties on
// created_at fall back to id order so the sequence is total.
func (r *ConversationTurnRepository) ListRecentByUserID(userID uint, limit int) ([]model.ConversationTurn, error) {
	if limit <= 0 {
		limit = 10
	}
	var turns []model.ConversationTurn
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&turns).Error; err != nil {
		return nil, fmt.Errorf("list recent turns failed: %w", err)
	}
	return turns, nil
}

func (r *ConversationTurnRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.ConversationTurn{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count turns failed: %w", err)
	}
	return count, nil
}
