package reminders

import (
	"context"
	"fmt"
	"sort"

	"github.com/cloudkit-tools/reminders.go/pkg/models"
	"github.com/cloudkit-tools/reminders.go/pkg/titledoc"
)

// resolveReminder finds the reminder a mutation targets, along with its
// current change tag, from the most recent snapshot.
func (c *Client) resolveReminder(identifier string) (models.Record, error) {
	rec, ok := c.FindReminder(identifier)
	if !ok {
		return models.Record{}, &NotFoundError{What: fmt.Sprintf("reminder %q", identifier)}
	}
	return rec, nil
}

// Update applies the supplied field deltas to a reminder, refreshing its
// modification timestamp. A stale change tag yields a ConflictError and
// leaves the record unmodified.
func (c *Client) Update(ctx context.Context, identifier string, req UpdateRequest) (*UpdateOutcome, error) {
	rec, err := c.resolveReminder(identifier)
	if err != nil {
		return nil, err
	}

	if req.Priority != nil && !validPriority(*req.Priority) {
		return nil, fmt.Errorf("reminders: invalid priority %d (want 0, 1, 5, or 9)", *req.Priority)
	}

	upd := models.Record{
		RecordName:      rec.RecordName,
		RecordType:      models.TypeReminder,
		RecordChangeTag: rec.RecordChangeTag,
		Fields: map[string]models.FieldValue{
			"LastModifiedDate": models.Timestamp(c.nowMillis()),
		},
	}

	if req.Title != nil {
		doc, err := titledoc.EncodeField(*req.Title)
		if err != nil {
			return nil, err
		}
		upd.SetField("TitleDocument", models.EncryptedBytes(doc))
	}
	if req.Notes != nil {
		doc, err := titledoc.EncodeField(*req.Notes)
		if err != nil {
			return nil, err
		}
		upd.SetField("NotesDocument", models.EncryptedBytes(doc))
	}
	if req.Flagged != nil {
		upd.SetField("Flagged", models.Int64(boolInt(*req.Flagged)))
	}
	if req.DueDate != nil {
		upd.SetField("DueDate", models.Timestamp(req.DueDate.UnixMilli()))
	}
	if req.Priority != nil {
		upd.SetField("Priority", models.Int64(int64(*req.Priority)))
	}
	if req.ListName != nil {
		list, ok := c.ListByName(*req.ListName)
		if !ok {
			return nil, &NotFoundError{What: fmt.Sprintf("list %q", *req.ListName)}
		}
		upd.SetField("List", models.Ref(list.ID, c.zone, models.ActionNone))
	}

	if err := c.modifyOne(ctx, models.OpUpdate, upd); err != nil {
		return nil, err
	}

	outcome := &UpdateOutcome{
		ID:    rec.RecordName,
		Title: titledoc.DecodeField(rec.String("TitleDocument")),
	}
	if req.Title != nil {
		outcome.Title = *req.Title
	}
	for name := range upd.Fields {
		if name != "LastModifiedDate" {
			outcome.FieldsChanged = append(outcome.FieldsChanged, name)
		}
	}
	sort.Strings(outcome.FieldsChanged)
	return outcome, nil
}

// Complete marks a reminder completed, stamping the completion time.
// Completing an already-completed reminder refreshes the stamp.
func (c *Client) Complete(ctx context.Context, identifier string) (*CompleteOutcome, error) {
	rec, err := c.resolveReminder(identifier)
	if err != nil {
		return nil, err
	}

	nowMs := c.nowMillis()
	upd := models.Record{
		RecordName:      rec.RecordName,
		RecordType:      models.TypeReminder,
		RecordChangeTag: rec.RecordChangeTag,
		Fields: map[string]models.FieldValue{
			"Completed":        models.Int64(1),
			"CompletionDate":   models.Timestamp(nowMs),
			"LastModifiedDate": models.Timestamp(nowMs),
		},
	}
	if err := c.modifyOne(ctx, models.OpUpdate, upd); err != nil {
		return nil, err
	}

	return &CompleteOutcome{
		ID:    rec.RecordName,
		Title: titledoc.DecodeField(rec.String("TitleDocument")),
	}, nil
}

// Delete removes a reminder and its dependent alarm records in one
// batch. Children go first: each Alarm whose back-reference matches the
// reminder, preceded by each AlarmTrigger whose back-reference matches
// that alarm, so no surviving record is left pointing at a deleted one.
// The reminder itself is the final operation.
func (c *Client) Delete(ctx context.Context, identifier string) (*DeleteOutcome, error) {
	rec, err := c.resolveReminder(identifier)
	if err != nil {
		return nil, err
	}
	reminderName := rec.RecordName

	var ops []models.Operation
	deleteOp := func(target models.Record) {
		ops = append(ops, models.Operation{
			OperationType: models.OpDelete,
			Record: models.Record{
				RecordName:      target.RecordName,
				RecordChangeTag: target.RecordChangeTag,
			},
		})
	}

	for _, alarm := range c.recordsOfType(models.TypeAlarm) {
		ref := alarm.Reference("Reminder")
		if ref == nil || ref.RecordName != reminderName {
			continue
		}
		for _, trigger := range c.recordsOfType(models.TypeAlarmTrigger) {
			tref := trigger.Reference("Alarm")
			if tref != nil && tref.RecordName == alarm.RecordName {
				deleteOp(trigger)
			}
		}
		deleteOp(alarm)
	}
	deleteOp(rec)

	var resp models.ModifyResponse
	if err := c.tx.Post(ctx, pathModify, models.ModifyRequest{ZoneID: c.zone, Operations: ops}, &resp); err != nil {
		return nil, err
	}

	deleted := 0
	var primary *models.Record
	for i := range resp.Records {
		r := &resp.Records[i]
		if r.Deleted {
			deleted++
		}
		if r.RecordName == reminderName {
			primary = r
		}
	}

	switch {
	case primary == nil:
		return nil, fmt.Errorf("reminders: no result for %s in modify response", reminderName)
	case primary.ServerErrorCode != "":
		return nil, rejectionError(*primary)
	case !primary.Deleted:
		return nil, fmt.Errorf("reminders: delete of %s not acknowledged", reminderName)
	}

	return &DeleteOutcome{
		ID:             reminderName,
		Title:          titledoc.DecodeField(rec.String("TitleDocument")),
		RelatedDeleted: deleted - 1,
	}, nil
}
