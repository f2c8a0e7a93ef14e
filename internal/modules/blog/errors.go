package blog

import "errors"

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateCategory = errors.New("category already exists")
)
