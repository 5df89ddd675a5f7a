package codec

// Errors
var (
	ErrTruncated       = &CodecError{"truncated record"}
	ErrReservedNonzero = &CodecError{"reserved field must be zero"}
	ErrInvalidIndex    = &CodecError{"invalid shortcut index"}
	ErrInvalidCode     = &CodecError{"invalid code"}
	ErrInvalidTag      = &CodecError{"invalid record tag"}
	ErrInvalidField    = &CodecError{"invalid field value"}
	ErrMalformedField  = &CodecError{"malformed field"}
	ErrFieldOverflow   = &CodecError{"field overflow"}
	ErrUnsorted        = &CodecError{"records not sorted by leading letter"}
	ErrTagMismatch     = &CodecError{"field not defined for record tag"}
)

// CodecError represents a table decoding or encoding error
type CodecError struct {
	Message string
}

func (e *CodecError) Error() string {
	return e.Message
}
