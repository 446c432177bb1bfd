package errors

import "github.com/google/uuid"

// ValidateSnapshotID checks that id is a canonical UUID string. Snapshot IDs
// are used as file names and database keys, so anything else is rejected.
func ValidateSnapshotID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "snapshot id cannot be empty")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid snapshot id %q", id)
	}
	if parsed.String() != id {
		return New(ErrCodeInvalidInput, "snapshot id %q is not in canonical form", id)
	}
	return nil
}

// ValidateRange checks that v lies in [lo, hi]. name is used in the message.
func ValidateRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return New(ErrCodeInvalidInput, "%s must be between %d and %d, got %d", name, lo, hi, v)
	}
	return nil
}
