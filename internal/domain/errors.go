package domain

import "errors"

var (
	ErrNotFound               = errors.New("resource not found")
	ErrIdentificationNotFound = errors.New("identification not found")
	ErrIdentificationExpired  = errors.New("identification expired")
	ErrDatasetNotFound        = errors.New("dataset not found")
	ErrEmptySelection         = errors.New("at least one item selection is required")
	ErrInvalidSelection       = errors.New("invalid item selection")
	ErrInvalidGranularity     = errors.New("invalid extraction granularity")
	ErrInvalidFilterMode      = errors.New("invalid source filter mode")
	ErrUnsupportedFileType    = errors.New("unsupported file type")
	ErrFileTooLarge           = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed           = errors.New("file upload to storage failed")
	ErrPageOutOfRange         = errors.New("page number out of range")
	ErrPageRequired           = errors.New("page number required for PDF files")
	ErrNotPDF                 = errors.New("file is not a PDF")
	ErrVisionNotConfigured    = errors.New("vision model not configured")
)
