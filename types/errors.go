package types

// ConsistencyError is returned when stored state contradicts itself, e.g. a
// pre-commit record with no finalized block before it.
type ConsistencyError struct {
	msg string
}

// MakeConsistencyError creates a new consistency error object.
func MakeConsistencyError(msg string) ConsistencyError {
	return ConsistencyError{msg}
}

func (e ConsistencyError) Error() string {
	return "consistency error: " + e.msg
}
