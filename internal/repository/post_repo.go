package repository

import (
	"context"
	"encoding/json"
	"time"

	"fundis/internal/domain"

	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

type postModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Title     string    `gorm:"column:title"`
	Content   string    `gorm:"column:content;type:text"`
	Excerpt   string    `gorm:"column:excerpt;type:text"`
	Author    string    `gorm:"column:author"`
	Category  string    `gorm:"column:category;index"`
	Tags      string    `gorm:"column:tags;type:text"`
	ImageURL  string    `gorm:"column:image_url"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (postModel) TableName() string { return "posts" }

func toDomainPost(m postModel) *domain.Post {
	var tags []string
	if m.Tags != "" {
		_ = json.Unmarshal([]byte(m.Tags), &tags)
	}

	return &domain.Post{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		Excerpt:   m.Excerpt,
		Author:    m.Author,
		Category:  m.Category,
		Tags:      tags,
		ImageURL:  m.ImageURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toPostModel(p *domain.Post) postModel {
	var tags string
	if len(p.Tags) > 0 {
		raw, _ := json.Marshal(p.Tags)
		tags = string(raw)
	}

	return postModel{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Excerpt:   p.Excerpt,
		Author:    p.Author,
		Category:  p.Category,
		Tags:      tags,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (r *PostRepository) List(ctx context.Context) ([]domain.Post, error) {
	var rows []postModel
	tx := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Post, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainPost(m))
	}
	return out, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	var m postModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainPost(m), nil
}

func (r *PostRepository) Create(ctx context.Context, p *domain.Post) error {
	m := toPostModel(p)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*p = *toDomainPost(m)
	return nil
}

func (r *PostRepository) Update(ctx context.Context, p *domain.Post) error {
	m := toPostModel(p)
	tx := r.db.WithContext(ctx).Model(&postModel{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
		"title":     m.Title,
		"content":   m.Content,
		"excerpt":   m.Excerpt,
		"author":    m.Author,
		"category":  m.Category,
		"tags":      m.Tags,
		"image_url": m.ImageURL,
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&postModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
