package blog

type PostInput struct {
	Title    string   `json:"title" validate:"required,min=3,max=200"`
	Content  string   `json:"content" validate:"required,min=10"`
	Excerpt  string   `json:"excerpt" validate:"max=500"`
	Author   string   `json:"author" validate:"required,min=2,max=100"`
	Category string   `json:"category" validate:"required"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"image_url" validate:"omitempty,url"`
}

type CommentInput struct {
	Author  string `json:"author" validate:"required,min=2,max=100"`
	Content string `json:"content" validate:"required,min=2,max=2000"`
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// ValidationError carries the per-field failures for the response envelope.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

func (e *ValidationError) Unwrap() error { return ErrValidation }
