package tabular

import "errors"

var (
	// ErrEmptyFile is returned when the input file has no content
	ErrEmptyFile = errors.New("input file is empty")

	// ErrInvalidEncoding is returned when the file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("input file missing header row")

	// ErrUnsupportedFormat is returned for extensions other than .csv/.xlsx/.xls
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
