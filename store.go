package reminders

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/buger/jsonparser"

	"github.com/cloudkit-tools/reminders.go/pkg/models"
	"github.com/cloudkit-tools/reminders.go/pkg/titledoc"
)

// Refresh fetches a full snapshot of the zone: a token-continued page
// loop over records/changes, accumulated before any accessor sees it.
// On any failure the pages already fetched are discarded and the
// previous snapshot stays in place, so accessors never serve a partial,
// inconsistent view.
func (c *Client) Refresh(ctx context.Context) error {
	var (
		all   []models.Record
		token string
	)
	for {
		req := models.ChangesRequest{ZoneID: c.zone, SyncToken: token}
		var page models.ChangesResponse
		if err := c.tx.Post(ctx, pathChanges, req, &page); err != nil {
			return err
		}
		all = append(all, page.Records...)
		if !page.MoreComing || len(page.Records) == 0 {
			break
		}
		token = page.SyncToken
	}

	byType := make(map[string][]models.Record)
	for _, rec := range all {
		byType[rec.RecordType] = append(byType[rec.RecordType], rec)
	}
	c.records = all
	c.byType = byType

	c.log.Debug().Int("records", len(all)).Msg("snapshot refreshed")
	return nil
}

// recordsOfType returns the cached records of one type, in fetch order.
// Soft-deleted records are included; accessors filter them.
func (c *Client) recordsOfType(recordType string) []models.Record {
	return c.byType[recordType]
}

// Lists returns the non-deleted reminder lists in fetch order.
func (c *Client) Lists() []List {
	var lists []List
	for _, rec := range c.recordsOfType(models.TypeList) {
		if rec.SoftDeleted() {
			continue
		}
		list := List{
			ID:      rec.RecordName,
			Name:    rec.String("Name"),
			IsGroup: rec.Int64("IsGroup") != 0,
			Color:   parseColor(rec.String("Color")),
		}
		if ref := rec.Reference("ParentList"); ref != nil {
			list.ParentID = ref.RecordName
		}
		lists = append(lists, list)
	}
	return lists
}

// ListByName finds a list by exact case-insensitive name match.
func (c *Client) ListByName(name string) (List, bool) {
	for _, list := range c.Lists() {
		if strings.EqualFold(list.Name, name) {
			return list, true
		}
	}
	return List{}, false
}

// DefaultList returns the first non-group list in cache order.
func (c *Client) DefaultList() (List, bool) {
	for _, list := range c.Lists() {
		if !list.IsGroup {
			return list, true
		}
	}
	return List{}, false
}

// Reminders returns the non-deleted reminders in fetch order, optionally
// filtering out completed ones.
func (c *Client) Reminders(includeCompleted bool) []Reminder {
	var out []Reminder
	for _, rec := range c.recordsOfType(models.TypeReminder) {
		if rec.SoftDeleted() {
			continue
		}
		rem := decodeReminder(rec)
		if !includeCompleted && rem.Completed {
			continue
		}
		out = append(out, rem)
	}
	return out
}

// Hashtags returns the unique non-deleted hashtag names, sorted.
func (c *Client) Hashtags() []string {
	seen := map[string]bool{}
	for _, rec := range c.recordsOfType(models.TypeHashtag) {
		if rec.SoftDeleted() {
			continue
		}
		if name := rec.String("Name"); name != "" {
			seen[name] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for name := range seen {
		tags = append(tags, name)
	}
	sort.Strings(tags)
	return tags
}

// SmartLists returns the non-deleted smart lists.
func (c *Client) SmartLists() []SmartList {
	var out []SmartList
	for _, rec := range c.recordsOfType(models.TypeSmartList) {
		if rec.SoftDeleted() {
			continue
		}
		sl := SmartList{
			Type: rec.String("SmartListType"),
			Name: rec.String("Name"),
		}
		if sl.Name == "" {
			if i := strings.LastIndexByte(sl.Type, '.'); i >= 0 {
				sl.Name = sl.Type[i+1:]
			} else {
				sl.Name = sl.Type
			}
		}
		out = append(out, sl)
	}
	return out
}

// FindReminder resolves an identifier to a Reminder record. An
// identifier with the "Reminder/" prefix matches exactly on record name;
// anything else is a case-insensitive title substring search over
// non-deleted reminders, completed included.
//
// A substring matching several titles resolves to the first match in
// cache order. Cache order is fetch order, which is stable within one
// snapshot but carries no other guarantee.
func (c *Client) FindReminder(identifier string) (models.Record, bool) {
	if strings.HasPrefix(identifier, "Reminder/") {
		for _, rec := range c.recordsOfType(models.TypeReminder) {
			if rec.RecordName == identifier {
				return rec, true
			}
		}
		return models.Record{}, false
	}

	needle := strings.ToLower(identifier)
	for _, rec := range c.recordsOfType(models.TypeReminder) {
		if rec.SoftDeleted() {
			continue
		}
		title := titledoc.DecodeField(rec.String("TitleDocument"))
		if strings.Contains(strings.ToLower(title), needle) {
			return rec, true
		}
	}
	return models.Record{}, false
}

// decodeReminder maps a Reminder record to its logical view.
func decodeReminder(rec models.Record) Reminder {
	rem := Reminder{
		ID:                rec.RecordName,
		Title:             titledoc.DecodeField(rec.String("TitleDocument")),
		Completed:         rec.Int64("Completed") != 0,
		Flagged:           rec.Int64("Flagged") != 0,
		Priority:          int(rec.Int64("Priority")),
		AllDay:            rec.Int64("AllDay") != 0,
		URL:               rec.String("URL"),
		AlarmIDs:          rec.StringList("AlarmIDs"),
		HashtagIDs:        rec.StringList("HashtagIDs"),
		RecurrenceRuleIDs: rec.StringList("RecurrenceRuleIDs"),
	}
	if notes := rec.String("NotesDocument"); notes != "" {
		rem.Notes = titledoc.DecodeField(notes)
	}
	if ms, ok := rec.Timestamp("DueDate"); ok {
		due := time.UnixMilli(ms).UTC()
		rem.DueDate = &due
	}
	if rem.Completed {
		if ms, ok := rec.Timestamp("CompletionDate"); ok {
			done := time.UnixMilli(ms).UTC()
			rem.CompletionDate = &done
		}
	}
	if ref := rec.Reference("List"); ref != nil {
		rem.ListID = ref.RecordName
	}
	if ref := rec.Reference("ParentReminder"); ref != nil {
		rem.ParentID = ref.RecordName
	}
	return rem
}

// parseColor extracts the symbolic color name from a list's color
// descriptor, an opaque JSON blob.
func parseColor(blob string) string {
	if blob == "" {
		return "default"
	}
	if name, err := jsonparser.GetString([]byte(blob), "daSymbolicColorName"); err == nil {
		return name
	}
	if name, err := jsonparser.GetString([]byte(blob), "ckSymbolicColorName"); err == nil {
		return name
	}
	return "default"
}
