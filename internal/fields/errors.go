package fields

const (
	ErrorCodeMissingRequired = "MISSING_REQUIRED_FIELD"
	ErrorCodeUnknownField    = "UNKNOWN_FIELD"
	ErrorCodeInvalidType     = "INVALID_TYPE"
	ErrorCodeInvalidValue    = "INVALID_VALUE"
)
