package reminders

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"github.com/cloudkit-tools/reminders.go/pkg/models"
	"github.com/cloudkit-tools/reminders.go/pkg/titledoc"
)

// Create builds and submits the record graph for one reminder: the
// dependent records first (alarm trigger, alarm, hashtags, recurrence
// rule), the reminder last so its ID-list fields can name the sibling
// UUIDs, all in one modify batch.
//
// The siblings cannot reference the reminder before it exists, so a
// second phase issues one single-record update per created sibling,
// setting its Reminder back-reference with the change tag the create
// returned. The second phase is best-effort per sibling: each attempt
// is reported in the outcome's Links and a failure there does not roll
// back the reminder or the other siblings.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*CreateOutcome, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("reminders: title is required")
	}
	if req.Location != "" {
		// Location alarms need record-level encryption keys that only
		// paired devices hold; the protocol cannot create them.
		return nil, &CapabilityError{Feature: "location-based alarms"}
	}
	if !validPriority(req.Priority) {
		return nil, fmt.Errorf("reminders: invalid priority %d (want 0, 1, 5, or 9)", req.Priority)
	}
	if req.AlarmMinutes != nil && req.DueDate == nil {
		return nil, fmt.Errorf("reminders: an alarm requires a due date")
	}
	if req.Recurrence != nil && req.DueDate == nil {
		return nil, fmt.Errorf("reminders: a recurrence rule requires a due date")
	}

	list, err := c.resolveList(req.ListName)
	if err != nil {
		return nil, err
	}

	nowMs := c.nowMillis()
	reminderName := models.NewRecordName(models.TypeReminder)

	titleDoc, err := titledoc.EncodeField(req.Title)
	if err != nil {
		return nil, err
	}

	reminder := models.Record{
		RecordName: reminderName,
		RecordType: models.TypeReminder,
		Fields: map[string]models.FieldValue{
			"TitleDocument":    models.EncryptedBytes(titleDoc),
			"Completed":        models.Int64(0),
			"Flagged":          models.Int64(boolInt(req.Flagged)),
			"Priority":         models.Int64(int64(req.Priority)),
			"AllDay":           models.Int64(boolInt(req.AllDay)),
			"Deleted":          models.Int64(0),
			"Imported":         models.Int64(0),
			"CreationDate":     models.Timestamp(nowMs),
			"LastModifiedDate": models.Timestamp(nowMs),
			"List":             models.Ref(list.ID, c.zone, models.ActionNone),
		},
	}

	if req.Notes != "" {
		notesDoc, err := titledoc.EncodeField(req.Notes)
		if err != nil {
			return nil, err
		}
		reminder.SetField("NotesDocument", models.EncryptedBytes(notesDoc))
	}
	if req.DueDate != nil {
		reminder.SetField("DueDate", models.Timestamp(req.DueDate.UnixMilli()))
		if !req.AllDay {
			reminder.SetField("TimeZone", models.String(c.tzName))
		}
	}
	if req.URL != "" {
		reminder.SetField("URL", models.String(req.URL))
	}
	if req.ParentID != "" {
		parent := req.ParentID
		if !strings.HasPrefix(parent, "Reminder/") {
			parent = "Reminder/" + parent
		}
		reminder.SetField("ParentReminder", models.Ref(parent, c.zone, models.ActionValidate))
	}

	var (
		ops      []models.Operation
		siblings []sibling
	)
	addSibling := func(rec models.Record, refField, refTarget string) {
		ops = append(ops, models.Operation{OperationType: models.OpCreate, Record: rec})
		siblings = append(siblings, sibling{record: rec, refField: refField, refTarget: refTarget})
	}

	if req.AlarmMinutes != nil {
		trigger, alarm, alarmID := c.buildAlarm(*req.DueDate, *req.AlarmMinutes)
		addSibling(trigger, "Alarm", alarm.RecordName)
		addSibling(alarm, "Reminder", reminderName)
		reminder.SetField("AlarmIDs", models.StringList([]string{alarmID}))
	}

	if len(req.Tags) > 0 {
		var tagIDs []string
		for _, tag := range req.Tags {
			rec := buildHashtag(tag, nowMs)
			addSibling(rec, "Reminder", reminderName)
			tagIDs = append(tagIDs, models.BareID(rec.RecordName))
		}
		reminder.SetField("HashtagIDs", models.StringList(tagIDs))
	}

	if req.Recurrence != nil {
		rec := buildRecurrenceRule(*req.Recurrence)
		addSibling(rec, "Reminder", reminderName)
		reminder.SetField("RecurrenceRuleIDs", models.StringList([]string{models.BareID(rec.RecordName)}))
	}

	ops = append(ops, models.Operation{OperationType: models.OpCreate, Record: reminder})

	var resp models.ModifyResponse
	if err := c.tx.Post(ctx, pathModify, models.ModifyRequest{ZoneID: c.zone, Operations: ops}, &resp); err != nil {
		return nil, err
	}

	results := make(map[string]models.Record, len(resp.Records))
	for _, rec := range resp.Records {
		results[rec.RecordName] = rec
	}

	created, ok := results[reminderName]
	if !ok {
		return nil, fmt.Errorf("reminders: no reminder record in modify response")
	}
	if created.ServerErrorCode != "" {
		return nil, rejectionError(created)
	}

	outcome := &CreateOutcome{
		ID:       reminderName,
		Title:    req.Title,
		ListID:   list.ID,
		ListName: list.Name,
	}
	for _, sib := range siblings {
		outcome.Links = append(outcome.Links, c.linkSibling(ctx, sib, results))
	}
	return outcome, nil
}

// sibling is a dependent record created alongside a reminder, plus the
// back-reference it must receive in the second phase: triggers point at
// their alarm, everything else at the reminder.
type sibling struct {
	record    models.Record
	refField  string
	refTarget string
}

// linkSibling performs one second-phase update, setting a created
// sibling's back-reference with the change tag its create returned.
func (c *Client) linkSibling(ctx context.Context, sib sibling, results map[string]models.Record) LinkResult {
	link := LinkResult{RecordName: sib.record.RecordName}

	created, ok := results[sib.record.RecordName]
	if !ok {
		link.Err = fmt.Errorf("no result for %s in modify response", sib.record.RecordName)
	} else if created.ServerErrorCode != "" {
		link.Err = rejectionError(created)
	} else {
		upd := models.Record{
			RecordName:      sib.record.RecordName,
			RecordType:      sib.record.RecordType,
			RecordChangeTag: created.RecordChangeTag,
		}
		upd.SetField(sib.refField, models.Ref(sib.refTarget, c.zone, models.ActionNone))
		link.Err = c.modifyOne(ctx, models.OpUpdate, upd)
	}

	if link.Err != nil {
		c.log.Warn().Str("record", sib.record.RecordName).Err(link.Err).Msg("back-reference link failed")
	}
	return link
}

// modifyOne submits a single-record operation and surfaces any
// per-record rejection as a typed error.
func (c *Client) modifyOne(ctx context.Context, opType string, rec models.Record) error {
	op := models.Operation{OperationType: opType, Record: rec}
	var resp models.ModifyResponse
	if err := c.tx.Post(ctx, pathModify, models.ModifyRequest{ZoneID: c.zone, Operations: []models.Operation{op}}, &resp); err != nil {
		return err
	}
	if len(resp.Records) == 0 {
		return fmt.Errorf("reminders: empty modify response for %s", rec.RecordName)
	}
	if code := resp.Records[0].ServerErrorCode; code != "" {
		return rejectionError(resp.Records[0])
	}
	return nil
}

// dateComponents is the JSON shape of an AlarmTrigger's
// DateComponentsData blob.
type dateComponents struct {
	Minute   int `json:"minute"`
	Hour     int `json:"hour"`
	Day      int `json:"day"`
	Month    int `json:"month"`
	Year     int `json:"year"`
	Second   int `json:"second"`
	TimeZone struct {
		Identifier string `json:"identifier"`
	} `json:"timeZone"`
}

// buildAlarm builds the AlarmTrigger and Alarm records for an alert
// leadMinutes before due. The alarm time is expressed as calendar date
// components in the client's configured timezone.
func (c *Client) buildAlarm(due time.Time, leadMinutes int) (trigger, alarm models.Record, alarmID string) {
	alarmID = strings.ToUpper(uuid.Must(uuid.NewV4()).String())
	triggerID := strings.ToUpper(uuid.Must(uuid.NewV4()).String())

	at := due.Add(-time.Duration(leadMinutes) * time.Minute).In(c.loc)
	comps := dateComponents{
		Minute: at.Minute(),
		Hour:   at.Hour(),
		Day:    at.Day(),
		Month:  int(at.Month()),
		Year:   at.Year(),
	}
	comps.TimeZone.Identifier = c.tzName
	blob, _ := json.Marshal(comps)

	trigger = models.Record{
		RecordName: "AlarmTrigger/" + triggerID,
		RecordType: models.TypeAlarmTrigger,
		Fields: map[string]models.FieldValue{
			"Type":               models.String("Date"),
			"DateComponentsData": models.Bytes(base64.StdEncoding.EncodeToString(blob)),
			"Deleted":            models.Int64(0),
			"Imported":           models.Int64(0),
		},
	}
	alarm = models.Record{
		RecordName: "Alarm/" + alarmID,
		RecordType: models.TypeAlarm,
		Fields: map[string]models.FieldValue{
			"AlarmUID":  models.String(alarmID),
			"TriggerID": models.String(triggerID),
			"Deleted":   models.Int64(0),
			"Imported":  models.Int64(0),
		},
	}
	return trigger, alarm, alarmID
}

func buildHashtag(tag string, nowMs int64) models.Record {
	name := strings.TrimLeft(strings.TrimSpace(tag), "#")
	return models.Record{
		RecordName: models.NewRecordName(models.TypeHashtag),
		RecordType: models.TypeHashtag,
		Fields: map[string]models.FieldValue{
			"Name":         models.String(name),
			"Type":         models.Int64(0),
			"CreationDate": models.Timestamp(nowMs),
			"Deleted":      models.Int64(0),
			"Imported":     models.Int64(0),
		},
	}
}

func buildRecurrenceRule(rule Recurrence) models.Record {
	interval := rule.Interval
	if interval <= 0 {
		interval = 1
	}
	rec := models.Record{
		RecordName: models.NewRecordName(models.TypeRecurrenceRule),
		RecordType: models.TypeRecurrenceRule,
		Fields: map[string]models.FieldValue{
			"Frequency": models.Int64(int64(rule.Frequency)),
			"Interval":  models.Int64(int64(interval)),
			"Deleted":   models.Int64(0),
			"Imported":  models.Int64(0),
		},
	}
	if rule.EndDate != nil {
		rec.SetField("EndDate", models.Timestamp(rule.EndDate.UnixMilli()))
	}
	if rule.Count > 0 {
		rec.SetField("OccurrenceCount", models.Int64(int64(rule.Count)))
	}
	return rec
}

// resolveList picks the target list: exact case-insensitive name match,
// or the first non-group list when no name is given.
func (c *Client) resolveList(name string) (List, error) {
	if name != "" {
		list, ok := c.ListByName(name)
		if !ok {
			return List{}, &NotFoundError{What: fmt.Sprintf("list %q", name)}
		}
		return list, nil
	}
	list, ok := c.DefaultList()
	if !ok {
		return List{}, &NotFoundError{What: "any reminder list (zone has none)"}
	}
	return list, nil
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
