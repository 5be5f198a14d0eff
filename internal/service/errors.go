package service

import (
	"fmt"

	"github.com/google/uuid"
)

type ErrFileTooLarge struct {
	error
}

func NewErrFileTooLarge(size, limit int64) *ErrFileTooLarge {
	return &ErrFileTooLarge{fmt.Errorf("file size %d exceeds the %d byte limit", size, limit)}
}

type ErrUnsupportedFormat struct {
	error
}

func NewErrUnsupportedFormat(contentType, filename string) *ErrUnsupportedFormat {
	return &ErrUnsupportedFormat{fmt.Errorf("unsupported format: content type %q, filename %q", contentType, filename)}
}

type ErrJobNotFound struct {
	error
}

func NewErrJobNotFound(id uuid.UUID) *ErrJobNotFound {
	return &ErrJobNotFound{fmt.Errorf("job %s not found", id)}
}
