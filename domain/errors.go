package domain

import "errors"

var (
	ErrEmptyTitle      = errors.New("title is required")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrNegativeCount   = errors.New("attachments and collaborators must not be negative")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidLanguage = errors.New("invalid language")
	ErrInvalidTheme    = errors.New("invalid theme")
)
