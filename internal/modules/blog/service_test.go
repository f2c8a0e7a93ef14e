package blog

import (
	"context"
	"strings"
	"testing"

	"fundis/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) List(ctx context.Context) ([]domain.Post, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Post), args.Error(1)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, p *domain.Post) error {
	args := m.Called(ctx, p)
	if p != nil {
		p.ID = 101
	}
	return args.Error(0)
}

func (m *MockPostRepository) Update(ctx context.Context, p *domain.Post) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	args := m.Called(ctx, c)
	if c != nil {
		c.ID = 55
	}
	return args.Error(0)
}

func (m *MockCommentRepository) DeleteByPost(ctx context.Context, postID int64) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func validPostInput() PostInput {
	return PostInput{
		Title:    "Hiring a fundi: what to check first",
		Content:  "Always confirm the fundi's previous work and agree on the price before they start.",
		Author:   "Wanjiru Kamau",
		Category: "Tips",
		Tags:     []string{"hiring", "tips"},
	}
}

func newTestService(posts *MockPostRepository, comments *MockCommentRepository, categories *MockCategoryRepository) *Service {
	return NewService(posts, comments, categories, nil)
}

func TestCreatePost_Valid(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(posts, new(MockCommentRepository), new(MockCategoryRepository))
	p, err := svc.CreatePost(context.Background(), validPostInput())

	assert.NoError(t, err)
	assert.Equal(t, int64(101), p.ID)
	posts.AssertExpectations(t)
}

func TestCreatePost_TitleTooShort(t *testing.T) {
	posts := new(MockPostRepository)
	svc := newTestService(posts, new(MockCommentRepository), new(MockCategoryRepository))

	in := validPostInput()
	in.Title = "ab"
	_, err := svc.CreatePost(context.Background(), in)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "Title")
	posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePost_TitleTooLong(t *testing.T) {
	svc := newTestService(new(MockPostRepository), new(MockCommentRepository), new(MockCategoryRepository))

	in := validPostInput()
	in.Title = strings.Repeat("x", 201)
	_, err := svc.CreatePost(context.Background(), in)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestCreatePost_ContentTooShort(t *testing.T) {
	svc := newTestService(new(MockPostRepository), new(MockCommentRepository), new(MockCategoryRepository))

	in := validPostInput()
	in.Content = "short"
	_, err := svc.CreatePost(context.Background(), in)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "Content")
}

func TestCreatePost_BadImageURL(t *testing.T) {
	svc := newTestService(new(MockPostRepository), new(MockCommentRepository), new(MockCategoryRepository))

	in := validPostInput()
	in.ImageURL = "not a url"
	_, err := svc.CreatePost(context.Background(), in)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestGetPost_NotFound(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	svc := newTestService(posts, new(MockCommentRepository), new(MockCategoryRepository))
	_, err := svc.GetPost(context.Background(), 404)

	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeletePost_RemovesCommentsFirst(t *testing.T) {
	posts := new(MockPostRepository)
	comments := new(MockCommentRepository)
	posts.On("GetByID", mock.Anything, int64(7)).Return(&domain.Post{ID: 7}, nil)
	comments.On("DeleteByPost", mock.Anything, int64(7)).Return(nil)
	posts.On("Delete", mock.Anything, int64(7)).Return(nil)

	svc := newTestService(posts, comments, new(MockCategoryRepository))
	err := svc.DeletePost(context.Background(), 7)

	assert.NoError(t, err)
	comments.AssertExpectations(t)
	posts.AssertExpectations(t)
}

func TestAddComment_UnknownPost(t *testing.T) {
	posts := new(MockPostRepository)
	comments := new(MockCommentRepository)
	posts.On("GetByID", mock.Anything, int64(9)).Return(nil, gorm.ErrRecordNotFound)

	svc := newTestService(posts, comments, new(MockCategoryRepository))
	_, err := svc.AddComment(context.Background(), 9, CommentInput{Author: "Ali", Content: "Great read"})

	assert.ErrorIs(t, err, ErrPostNotFound)
	comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddComment_Valid(t *testing.T) {
	posts := new(MockPostRepository)
	comments := new(MockCommentRepository)
	posts.On("GetByID", mock.Anything, int64(3)).Return(&domain.Post{ID: 3}, nil)
	comments.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(posts, comments, new(MockCategoryRepository))
	comment, err := svc.AddComment(context.Background(), 3, CommentInput{Author: "Ali", Content: "Great read"})

	assert.NoError(t, err)
	assert.Equal(t, int64(55), comment.ID)
	assert.Equal(t, int64(3), comment.PostID)
}

func TestCreateCategory_Validation(t *testing.T) {
	svc := newTestService(new(MockPostRepository), new(MockCommentRepository), new(MockCategoryRepository))

	_, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "x"})

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}
