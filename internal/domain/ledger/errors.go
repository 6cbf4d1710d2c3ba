package ledger

import (
	"fmt"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared"
)

// MalformedRecordError describes a source record rejected by the normalizer
type MalformedRecordError struct {
	Kind     SourceKind `json:"kind"`
	RecordID int64      `json:"record_id"`
	Reason   string     `json:"reason"`
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record %d: %s", e.Kind, e.RecordID, e.Reason)
}

// Is lets errors.Is match shared.ErrMalformedRecord
func (e *MalformedRecordError) Is(target error) bool {
	return target == shared.ErrMalformedRecord
}

func malformed(kind SourceKind, id int64, format string, args ...any) *MalformedRecordError {
	return &MalformedRecordError{Kind: kind, RecordID: id, Reason: fmt.Sprintf(format, args...)}
}

// SourceFailure describes a collaborator fetch that failed or timed out
type SourceFailure struct {
	Kind SourceKind
	Err  error
}

func (e *SourceFailure) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Kind, e.Err)
}

// Unwrap returns the collaborator error
func (e *SourceFailure) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match shared.ErrCollaboratorUnavailable
func (e *SourceFailure) Is(target error) bool {
	return target == shared.ErrCollaboratorUnavailable
}

// MarshalText renders the failure reason for JSON reports
func (e *SourceFailure) MarshalText() ([]byte, error) {
	return []byte(e.Error()), nil
}
