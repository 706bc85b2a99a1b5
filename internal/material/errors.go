package material

import "errors"

var (
	ErrDataNotFound  = errors.New("data not found")
	ErrMalformedData = errors.New("malformed data")
)
