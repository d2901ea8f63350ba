package reminders

import (
	"fmt"
	"time"
)

// Priority levels. The domain is non-contiguous by design and preserved
// exactly: any other value is a caller error rejected before the
// network call.
const (
	PriorityNone   = 0
	PriorityHigh   = 1
	PriorityMedium = 5
	PriorityLow    = 9
)

func validPriority(p int) bool {
	return p == PriorityNone || p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// ParsePriority maps the symbolic priority names to their stored values.
func ParsePriority(s string) (int, error) {
	switch s {
	case "none", "":
		return PriorityNone, nil
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	}
	return 0, fmt.Errorf("unknown priority %q (want high, medium, low, or none)", s)
}

// Frequency enumerates recurrence frequencies as stored on the wire.
type Frequency int

const (
	Daily Frequency = iota
	Weekly
	Monthly
	Yearly
)

func (f Frequency) String() string {
	switch f {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	}
	return fmt.Sprintf("Frequency(%d)", int(f))
}

// ParseFrequency parses a frequency name.
func ParseFrequency(s string) (Frequency, error) {
	switch s {
	case "daily":
		return Daily, nil
	case "weekly":
		return Weekly, nil
	case "monthly":
		return Monthly, nil
	case "yearly":
		return Yearly, nil
	}
	return 0, fmt.Errorf("unknown frequency %q (want daily, weekly, monthly, or yearly)", s)
}

// Recurrence describes a repeat rule for a reminder.
type Recurrence struct {
	Frequency Frequency
	// Interval repeats every N periods; 0 means 1.
	Interval int
	// EndDate optionally stops the repetition at a date.
	EndDate *time.Time
	// Count optionally stops after N occurrences.
	Count int
}

// Reminder is the logical view of a Reminder record.
type Reminder struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Notes          string     `json:"notes,omitempty"`
	Completed      bool       `json:"completed"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	Flagged        bool       `json:"flagged"`
	Priority       int        `json:"priority"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	AllDay         bool       `json:"all_day"`
	URL            string     `json:"url,omitempty"`
	ListID         string     `json:"list_id,omitempty"`
	ParentID       string     `json:"parent_id,omitempty"`

	// Bare UUIDs of dependent records; the dependents hold the actual
	// back-references.
	AlarmIDs          []string `json:"alarm_ids,omitempty"`
	HashtagIDs        []string `json:"hashtag_ids,omitempty"`
	RecurrenceRuleIDs []string `json:"recurrence_rule_ids,omitempty"`
}

// List is the logical view of a List record.
type List struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsGroup  bool   `json:"is_group"`
	ParentID string `json:"parent_id,omitempty"`
	Color    string `json:"color"`
}

// SmartList is the logical view of a SmartList record.
type SmartList struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// CreateRequest describes a reminder to create together with its
// dependent records.
type CreateRequest struct {
	Title string
	// ListName selects the target list by exact case-insensitive name.
	// Empty selects the first non-group list in cache order.
	ListName string
	Notes    string
	URL      string
	Flagged  bool
	// Priority must be one of PriorityNone/High/Medium/Low.
	Priority int
	DueDate  *time.Time
	AllDay   bool
	// AlarmMinutes alerts that many minutes before DueDate. Requires a
	// due date.
	AlarmMinutes *int
	// Location requests a location-based alarm. Always rejected with a
	// CapabilityError: location alarms need device-level encryption
	// keys this protocol cannot supply.
	Location string
	// ParentID makes the reminder a subtask of another reminder.
	ParentID   string
	Tags       []string
	Recurrence *Recurrence
}

// UpdateRequest carries field deltas for an update; nil fields are left
// untouched.
type UpdateRequest struct {
	Title    *string
	Notes    *string
	Flagged  *bool
	DueDate  *time.Time
	Priority *int
	ListName *string
}

// LinkResult is the outcome of one back-reference link attempt in the
// second phase of a create.
type LinkResult struct {
	RecordName string `json:"record_name"`
	Err        error  `json:"-"`
}

// Linked reports whether this sibling carries its back-reference.
func (l LinkResult) Linked() bool { return l.Err == nil }

// CreateOutcome reports a created reminder and the per-sibling link
// results. The primary create is successful even when some links
// failed; callers decide whether partial linking is acceptable.
type CreateOutcome struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	ListID   string       `json:"list_id"`
	ListName string       `json:"list"`
	Links    []LinkResult `json:"links,omitempty"`
}

// LinkFailures returns the links that did not complete.
func (o *CreateOutcome) LinkFailures() []LinkResult {
	var failed []LinkResult
	for _, l := range o.Links {
		if !l.Linked() {
			failed = append(failed, l)
		}
	}
	return failed
}

// UpdateOutcome reports an applied update.
type UpdateOutcome struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	FieldsChanged []string `json:"fields_changed"`
}

// CompleteOutcome reports a completed reminder.
type CompleteOutcome struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// DeleteOutcome reports a deleted reminder and how many dependent
// records (alarms, triggers) were deleted alongside it.
type DeleteOutcome struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	RelatedDeleted int    `json:"related_deleted"`
}

// ListOutcome reports a created list.
type ListOutcome struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
