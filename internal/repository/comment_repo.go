package repository

import (
	"context"
	"time"

	"fundis/internal/domain"

	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

type commentModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	PostID    int64     `gorm:"column:post_id;index"`
	Author    string    `gorm:"column:author"`
	Content   string    `gorm:"column:content;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (commentModel) TableName() string { return "comments" }

func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	var rows []commentModel
	tx := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at ASC").Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Comment, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.Comment{
			ID:        m.ID,
			PostID:    m.PostID,
			Author:    m.Author,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	m := commentModel{
		PostID:  c.PostID,
		Author:  c.Author,
		Content: c.Content,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	c.ID = m.ID
	c.CreatedAt = m.CreatedAt
	return nil
}

func (r *CommentRepository) DeleteByPost(ctx context.Context, postID int64) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&commentModel{}).Error
}
