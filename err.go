package reminders

import (
	"fmt"

	"github.com/cloudkit-tools/reminders.go/pkg/connection"
	"github.com/cloudkit-tools/reminders.go/pkg/models"
)

// TransportError is a failed round trip: network failure or non-2xx
// status. Fatal for the enclosing call, never retried automatically.
type TransportError = connection.RequestError

// NotFoundError reports that no list, reminder, or record matched.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprint("not found: ", e.What)
}

// ConflictError reports a stale change tag. The caller must re-resolve
// the record from a fresh snapshot before retrying.
type ConflictError struct {
	RecordName string
}

func (e *ConflictError) Error() string {
	return fmt.Sprint("stale change tag for record: ", e.RecordName)
}

// ServerRejection carries a per-record server error from a modify
// response.
type ServerRejection struct {
	RecordName string
	Code       string
	Reason     string
}

func (e *ServerRejection) Error() string {
	return fmt.Sprintf("server rejected %s: %s (%s)", e.RecordName, e.Code, e.Reason)
}

// CapabilityError reports a feature the protocol cannot express. It is
// raised before any network call.
type CapabilityError struct {
	Feature string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprint("unsupported by this protocol: ", e.Feature)
}

// rejectionError converts a modify-response record carrying a server
// error code into the matching typed error.
func rejectionError(rec models.Record) error {
	if rec.ServerErrorCode == models.ErrCodeConflict {
		return &ConflictError{RecordName: rec.RecordName}
	}
	return &ServerRejection{
		RecordName: rec.RecordName,
		Code:       rec.ServerErrorCode,
		Reason:     rec.Reason,
	}
}
