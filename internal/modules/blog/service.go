package blog

import (
	"context"
	"errors"

	"fundis/internal/domain"
	"fundis/internal/pkg/validator"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Service holds the blog content: posts, their comments, and the category
// list. Mutations are admin-only at the routing layer; the service itself
// only validates shape.
type Service struct {
	posts      postRepo
	comments   commentRepo
	categories categoryRepo
	loggerf    func(format string, args ...interface{})
}

func NewService(posts postRepo, comments commentRepo, categories categoryRepo, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{posts: posts, comments: comments, categories: categories, loggerf: loggerf}
}

func (s *Service) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return s.posts.List(ctx)
}

func (s *Service) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) CreatePost(ctx context.Context, in PostInput) (*domain.Post, error) {
	if fields := validator.Validate(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	p := &domain.Post{
		Title:    in.Title,
		Content:  in.Content,
		Excerpt:  in.Excerpt,
		Author:   in.Author,
		Category: in.Category,
		Tags:     in.Tags,
		ImageURL: in.ImageURL,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	s.loggerf("level=info msg=post created post_id=%d title=%q", p.ID, p.Title)
	return p, nil
}

func (s *Service) UpdatePost(ctx context.Context, id int64, in PostInput) (*domain.Post, error) {
	if fields := validator.Validate(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	p := &domain.Post{
		ID:       id,
		Title:    in.Title,
		Content:  in.Content,
		Excerpt:  in.Excerpt,
		Author:   in.Author,
		Category: in.Category,
		Tags:     in.Tags,
		ImageURL: in.ImageURL,
	}
	if err := s.posts.Update(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return s.GetPost(ctx, id)
}

// DeletePost removes the post and its comments. Comments go first so a
// partial failure never leaves orphans pointing at a live post.
func (s *Service) DeletePost(ctx context.Context, id int64) error {
	if _, err := s.GetPost(ctx, id); err != nil {
		return err
	}
	if err := s.comments.DeleteByPost(ctx, id); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	s.loggerf("level=info msg=post deleted post_id=%d", id)
	return nil
}

func (s *Service) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}

func (s *Service) AddComment(ctx context.Context, postID int64, in CommentInput) (*domain.Comment, error) {
	if fields := validator.Validate(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	c := &domain.Comment{PostID: postID, Author: in.Author, Content: in.Content}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	if fields := validator.Validate(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	c := &domain.Category{Name: in.Name, Description: in.Description}
	if err := s.categories.Create(ctx, c); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateCategory
		}
		return nil, err
	}
	return c, nil
}
