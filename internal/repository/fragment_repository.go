package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type FragmentRepository struct {
	db *gorm.DB
}

func NewFragmentRepository(db *gorm.DB) *FragmentRepository {
	return &FragmentRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *FragmentRepository) WithTx(tx *gorm.DB) *FragmentRepository {
	return &FragmentRepository{db: tx}
}

func (r *FragmentRepository) CreateBatch(fragments []model.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}
	if err := r.db.Create(&fragments).Error; err != nil {
		return fmt.Errorf("create fragments batch failed: %w", err)
	}
	return nil
}

func (r *FragmentRepository) ListByDocumentIDs(documentIDs []uint) ([]model.Fragment, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	var fragments []model.Fragment
	if err := r.db.Where("document_id IN ?", documentIDs).Order("id ASC").Find(&fragments).Error; err != nil {
		return nil, fmt.Errorf("list fragments by document ids failed: %w", err)
	}
	return fragments, nil
}

func (r *FragmentRepository) CountByDocumentID(documentID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Fragment{}).Where("document_id = ?", documentID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count fragments failed: %w", err)
	}
	return count, nil
}

func (r *FragmentRepository) DeleteByDocumentID(documentID uint) error {
	if err := r.db.Where("document_id = ?", documentID).Delete(&model.Fragment{}).Error; err != nil {
		return fmt.Errorf("delete fragments by document failed: %w", err)
	}
	return nil
}
