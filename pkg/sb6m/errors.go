package sb6m

import "errors"

var (
	ErrInvalidMagic        = errors.New("invalid SB6M magic")
	ErrMalformed           = errors.New("malformed SB6M container")
	ErrUnsupportedEncoding = errors.New("unsupported SB6M data encoding")
)
