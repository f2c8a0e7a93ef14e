package blog

import (
	"context"

	"fundis/internal/domain"
)

type postRepo interface {
	List(ctx context.Context) ([]domain.Post, error)
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	Create(ctx context.Context, p *domain.Post) error
	Update(ctx context.Context, p *domain.Post) error
	Delete(ctx context.Context, id int64) error
}

type commentRepo interface {
	ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error)
	Create(ctx context.Context, c *domain.Comment) error
	DeleteByPost(ctx context.Context, postID int64) error
}

type categoryRepo interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, c *domain.Category) error
}
