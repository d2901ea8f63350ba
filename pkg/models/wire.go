package models

// Zone wraps a zone entry in the zone-listing response.
type Zone struct {
	ZoneID ZoneID `json:"zoneID"`
}

// ZonesResponse is the body of a zones/list call.
type ZonesResponse struct {
	Zones []Zone `json:"zones"`
}

// ChangesRequest asks for one page of record changes. SyncToken is empty
// on the first page and carries the server's cursor afterwards.
type ChangesRequest struct {
	ZoneID    ZoneID `json:"zoneID"`
	SyncToken string `json:"syncToken,omitempty"`
}

// ChangesResponse is one page of a records/changes fetch.
type ChangesResponse struct {
	Records    []Record `json:"records"`
	MoreComing bool     `json:"moreComing,omitempty"`
	SyncToken  string   `json:"syncToken,omitempty"`
}

// Operation types accepted by records/modify.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Operation is one entry in a modify batch.
type Operation struct {
	OperationType string `json:"operationType"`
	Record        Record `json:"record"`
}

// ModifyRequest submits an ordered batch of operations against one zone.
// The batch is atomic on the server side; per-record failures come back
// as ServerErrorCode entries in the response records.
type ModifyRequest struct {
	ZoneID     ZoneID      `json:"zoneID"`
	Operations []Operation `json:"operations"`
}

// ModifyResponse mirrors the request order: one result record per
// operation, carrying the new change tag on success, Deleted on deletes,
// and ServerErrorCode/Reason on rejection.
type ModifyResponse struct {
	Records []Record `json:"records"`
}

// Server error codes relevant to the client.
const (
	// ErrCodeConflict signals a stale record change tag.
	ErrCodeConflict = "CONFLICT"
	// ErrCodeExists signals a create for a record name already in use.
	ErrCodeExists = "EXISTS"
	// ErrCodeNotFound signals an update or delete of an unknown record.
	ErrCodeNotFound = "NOT_FOUND"
)
