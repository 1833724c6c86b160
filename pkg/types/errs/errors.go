package errs

import "errors"

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrMalformedURL     = errors.New("malformed image url")
	ErrObjectExists     = errors.New("object already exists")
	ErrImageInUse       = errors.New("image in use")
	ErrCloneLogNotFound = errors.New("clone log not found")
	ErrUnknownEvent     = errors.New("unknown event type")
)
