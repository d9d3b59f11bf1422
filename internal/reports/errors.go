package reports

import "fmt"

// NotFoundError is returned when a report id does not exist, either during
// an update merge or a detail lookup.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("report %s not found", e.ID)
}

// PersistenceError is returned when the document store rejects a read or
// write for a reason other than access control.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s report: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// PermissionError is returned when the document store denies access, so the
// caller can show remediation guidance instead of a generic failure.
type PermissionError struct {
	Op  string
	Err error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s report: %v", e.Op, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// DateParseError describes a stored date value that none of the recognized
// timestamp shapes could decode. It is recovered locally by substituting the
// current time and is never raised out of the list/detail path.
type DateParseError struct {
	Value any
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unparsable stored date %v", e.Value)
}
