package gen

import "errors"

var (
	ErrProviderUnavailable = errors.New("content provider unavailable")
	ErrGenerationTimeout   = errors.New("content generation timeout")
	ErrInvalidResponse     = errors.New("content provider returned invalid response")
)
