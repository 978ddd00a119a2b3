package render

import "errors"

var (
	ErrTemplateNotFound   = errors.New("template base file not found")
	ErrTemplateLoadFailed = errors.New("template pdf load failed")
	ErrGeometryMismatch   = errors.New("template geometry mismatch")
	ErrFieldOutOfBounds   = errors.New("field placement out of page bounds")
)

const (
	ErrorCodeTemplateNotFound   = "TEMPLATE_NOT_FOUND"
	ErrorCodeTemplateLoadFailed = "TEMPLATE_LOAD_FAILED"
	ErrorCodeGeometryMismatch   = "TEMPLATE_GEOMETRY_MISMATCH"
	ErrorCodeFieldOutOfBounds   = "FIELD_OUT_OF_BOUNDS"
)
