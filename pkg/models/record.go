// Package models holds the wire types of the record-store protocol:
// zones, records, tagged field values, and the change-fetch / modify
// request and response envelopes. Everything is plain JSON; binary
// payloads travel as base64 strings inside field values.
package models

import (
	"strings"

	"github.com/gofrs/uuid"
)

// Field value type tags.
const (
	TypeString         = "STRING"
	TypeInt64          = "NUMBER_INT64"
	TypeTimestamp      = "TIMESTAMP"
	TypeBytes          = "BYTES"
	TypeEncryptedBytes = "ENCRYPTED_BYTES"
	TypeReference      = "REFERENCE"
	TypeStringList     = "STRING_LIST"
)

// Record types used by the reminders container. Unknown types are passed
// through opaquely.
const (
	TypeReminder       = "Reminder"
	TypeList           = "List"
	TypeAlarm          = "Alarm"
	TypeAlarmTrigger   = "AlarmTrigger"
	TypeHashtag        = "Hashtag"
	TypeRecurrenceRule = "RecurrenceRule"
	TypeSmartList      = "SmartList"
)

// ZoneID identifies one synchronization scope. The owner record name is
// account-specific and must be obtained from the zone-listing call.
type ZoneID struct {
	ZoneName        string `json:"zoneName"`
	OwnerRecordName string `json:"ownerRecordName,omitempty"`
	ZoneType        string `json:"zoneType,omitempty"`
}

// Reference is the value carried by a REFERENCE field.
type Reference struct {
	RecordName string  `json:"recordName"`
	ZoneID     *ZoneID `json:"zoneID,omitempty"`
	Action     string  `json:"action,omitempty"`
}

// Reference actions.
const (
	ActionNone     = "NONE"
	ActionValidate = "VALIDATE"
)

// FieldValue is a tagged field value. After JSON decoding, Value holds
// float64 for numbers, string for strings and base64 bytes,
// map[string]any for references, and []any for string lists; use the
// Record accessors rather than asserting directly.
type FieldValue struct {
	Value any    `json:"value"`
	Type  string `json:"type,omitempty"`
}

// Record is the universal unit of storage.
type Record struct {
	RecordName      string                `json:"recordName"`
	RecordType      string                `json:"recordType,omitempty"`
	RecordChangeTag string                `json:"recordChangeTag,omitempty"`
	Fields          map[string]FieldValue `json:"fields,omitempty"`

	// Modify-response bookkeeping.
	Deleted         bool   `json:"deleted,omitempty"`
	ServerErrorCode string `json:"serverErrorCode,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// NewRecordName generates a "<Type>/<UUID>" record name with the UUID
// uppercased, matching names the service's own clients write.
func NewRecordName(recordType string) string {
	return recordType + "/" + strings.ToUpper(uuid.Must(uuid.NewV4()).String())
}

// BareID returns the UUID part of a "<Type>/<UUID>" record name.
func BareID(recordName string) string {
	if i := strings.IndexByte(recordName, '/'); i >= 0 {
		return recordName[i+1:]
	}
	return recordName
}

// SoftDeleted reports whether the record carries the Deleted=1 field.
// Soft-deleted records still exist in the zone but are logically absent.
func (r *Record) SoftDeleted() bool {
	return r.Int64("Deleted") != 0
}

// Int64 returns the named field as an int64, or 0.
func (r *Record) Int64(name string) int64 {
	switch v := r.field(name).(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// String returns the named field as a string, or "".
func (r *Record) String(name string) string {
	if s, ok := r.field(name).(string); ok {
		return s
	}
	return ""
}

// Timestamp returns a TIMESTAMP field as epoch milliseconds. ok is false
// when the field is absent or not numeric.
func (r *Record) Timestamp(name string) (ms int64, ok bool) {
	switch v := r.field(name).(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

// StringList returns a STRING_LIST field's values.
func (r *Record) StringList(name string) []string {
	switch v := r.field(name).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Reference returns a REFERENCE field's value, or nil.
func (r *Record) Reference(name string) *Reference {
	switch v := r.field(name).(type) {
	case *Reference:
		return v
	case Reference:
		return &v
	case map[string]any:
		ref := &Reference{}
		if s, ok := v["recordName"].(string); ok {
			ref.RecordName = s
		}
		if s, ok := v["action"].(string); ok {
			ref.Action = s
		}
		if ref.RecordName == "" {
			return nil
		}
		return ref
	}
	return nil
}

func (r *Record) field(name string) any {
	if r.Fields == nil {
		return nil
	}
	return r.Fields[name].Value
}

// SetField stores a tagged value, allocating the field map on first use.
func (r *Record) SetField(name string, v FieldValue) {
	if r.Fields == nil {
		r.Fields = map[string]FieldValue{}
	}
	r.Fields[name] = v
}

// Tagged value constructors.

func String(v string) FieldValue    { return FieldValue{Value: v, Type: TypeString} }
func Int64(v int64) FieldValue      { return FieldValue{Value: v, Type: TypeInt64} }
func Timestamp(ms int64) FieldValue { return FieldValue{Value: ms, Type: TypeTimestamp} }
func Bytes(b64 string) FieldValue   { return FieldValue{Value: b64, Type: TypeBytes} }

func EncryptedBytes(b64 string) FieldValue {
	return FieldValue{Value: b64, Type: TypeEncryptedBytes}
}

func StringList(v []string) FieldValue {
	return FieldValue{Value: v, Type: TypeStringList}
}

func Ref(recordName string, zone ZoneID, action string) FieldValue {
	return FieldValue{
		Value: Reference{RecordName: recordName, ZoneID: &zone, Action: action},
		Type:  TypeReference,
	}
}
