package blog

import (
	"errors"
	"net/http"
	"strconv"

	"fundis/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the read side and comment submission.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/posts", h.ListPosts)
	rg.GET("/posts/:id", h.GetPost)
	rg.GET("/posts/:id/comments", h.ListComments)
	rg.POST("/posts/:id/comments", h.AddComment)
	rg.GET("/categories", h.ListCategories)
}

// RegisterAdminRoutes mounts content mutations, to be wrapped in auth
// middleware by the caller.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/posts", h.CreatePost)
	rg.PUT("/posts/:id", h.UpdatePost)
	rg.DELETE("/posts/:id", h.DeletePost)
	rg.POST("/categories", h.CreateCategory)
}

func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.service.ListPosts(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	response.Success(c, http.StatusOK, posts)
}

func (h *Handler) GetPost(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	p, err := h.service.GetPost(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) CreatePost(c *gin.Context) {
	var in PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}
	p, err := h.service.CreatePost(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	var in PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}
	p, err := h.service.UpdatePost(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	if err := h.service.DeletePost(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ListComments(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	comments, err := h.service.ListComments(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, comments)
}

func (h *Handler) AddComment(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	var in CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}
	comment, err := h.service.AddComment(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, comment)
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	response.Success(c, http.StatusOK, categories)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var in CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}
	category, err := h.service.CreateCategory(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, category)
}

func (h *Handler) postID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "post id must be an integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION", "validation failed", vErr.Fields)
	case errors.Is(err, ErrPostNotFound):
		response.Error(c, http.StatusNotFound, "POST_NOT_FOUND", "post not found")
	case errors.Is(err, ErrDuplicateCategory):
		response.Error(c, http.StatusConflict, "DUPLICATE_CATEGORY", "category already exists")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
