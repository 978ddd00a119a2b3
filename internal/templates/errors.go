package templates

import "errors"

var (
	ErrNotFound = errors.New("template not found")
	// ErrNoSchema means the template is cataloged but its field schema is not
	// implemented yet.
	ErrNoSchema = errors.New("template schema not implemented")
)

const (
	ErrorCodeNotFound = "NOT_FOUND"
)
