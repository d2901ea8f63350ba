package reminders_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reminders "github.com/cloudkit-tools/reminders.go"
	"github.com/cloudkit-tools/reminders.go/pkg/models"
)

func TestConnectResolvesZone(t *testing.T) {
	c, fake := newTestClient(t)
	assert.Equal(t, fake.Zone(), c.Zone())
	assert.Equal(t, "Reminders", c.Zone().ZoneName)
}

func TestRefreshPaginates(t *testing.T) {
	c, fake := newTestClient(t)
	fake.SetPageSize(2)
	for i := 0; i < 5; i++ {
		seedReminder(t, fake, "task", nil)
	}

	refresh(t, c)
	assert.Len(t, c.Reminders(true), 5)
}

func TestRefreshIsIdempotent(t *testing.T) {
	c, fake := newTestClient(t)
	for i := 0; i < 3; i++ {
		seedReminder(t, fake, "stable", nil)
	}

	refresh(t, c)
	first := idSet(c.Reminders(true))

	refresh(t, c)
	assert.Equal(t, first, idSet(c.Reminders(true)))
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	c, fake := newTestClient(t)
	seedReminder(t, fake, "kept", nil)
	refresh(t, c)

	seedReminder(t, fake, "never seen", nil)
	fake.FailNextWith(http.StatusInternalServerError, 1)

	err := c.Refresh(context.Background())
	require.Error(t, err)
	var txErr *reminders.TransportError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, http.StatusInternalServerError, txErr.StatusCode)

	// No partial cache: accessors still serve the last good snapshot.
	assert.Len(t, c.Reminders(true), 1)
	assert.Equal(t, "kept", c.Reminders(true)[0].Title)
}

func TestSoftDeletedRecordsAreFiltered(t *testing.T) {
	c, fake := newTestClient(t)
	seedReminder(t, fake, "alive", nil)
	gone := seedReminder(t, fake, "soft deleted", func(rec *models.Record) {
		rec.SetField("Deleted", models.Int64(1))
	})

	refresh(t, c)

	rems := c.Reminders(true)
	require.Len(t, rems, 1)
	assert.Equal(t, "alive", rems[0].Title)

	// Title search skips soft-deleted records; exact id does not, since
	// the record still physically exists in the zone.
	_, ok := c.FindReminder("soft deleted")
	assert.False(t, ok)
	_, ok = c.FindReminder(gone.RecordName)
	assert.True(t, ok)
}

func TestFindReminder(t *testing.T) {
	c, fake := newTestClient(t)
	groceries := seedReminder(t, fake, "Buy groceries", nil)
	seedReminder(t, fake, "Buy stamps", nil)
	done := seedReminder(t, fake, "File taxes", func(rec *models.Record) {
		rec.SetField("Completed", models.Int64(1))
	})

	refresh(t, c)

	rec, ok := c.FindReminder(groceries.RecordName)
	require.True(t, ok)
	assert.Equal(t, groceries.RecordName, rec.RecordName)

	// Case-insensitive substring.
	rec, ok = c.FindReminder("GROCER")
	require.True(t, ok)
	assert.Equal(t, groceries.RecordName, rec.RecordName)

	// Search includes completed reminders even though pending views
	// exclude them.
	rec, ok = c.FindReminder("taxes")
	require.True(t, ok)
	assert.Equal(t, done.RecordName, rec.RecordName)
	assert.Len(t, c.Reminders(false), 2)

	_, ok = c.FindReminder("no such reminder")
	assert.False(t, ok)
}

func TestFindReminderAmbiguousMatchIsStableWithinSnapshot(t *testing.T) {
	c, fake := newTestClient(t)
	seedReminder(t, fake, "Call mom", nil)
	seedReminder(t, fake, "Call dad", nil)

	refresh(t, c)

	first, ok := c.FindReminder("call")
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := c.FindReminder("call")
		require.True(t, ok)
		assert.Equal(t, first.RecordName, again.RecordName)
	}
}

func TestListsHierarchyAndColor(t *testing.T) {
	c, fake := newTestClient(t)
	group := seedList(fake, "Life", true, "")
	child := seedList(fake, "Home", false, group.RecordName)
	colored := fake.Seed(func() models.Record {
		rec := models.Record{RecordName: models.NewRecordName(models.TypeList), RecordType: models.TypeList}
		rec.SetField("Name", models.String("Work"))
		rec.SetField("Color", models.String(`{"daSymbolicColorName":"orange","ckSymbolicColorName":"red"}`))
		return rec
	}())

	refresh(t, c)

	lists := c.Lists()
	require.Len(t, lists, 3)

	byName := map[string]reminders.List{}
	for _, l := range lists {
		byName[l.Name] = l
	}
	assert.True(t, byName["Life"].IsGroup)
	assert.Equal(t, group.RecordName, byName["Home"].ParentID)
	assert.Equal(t, "default", byName["Home"].Color)
	assert.Equal(t, "orange", byName["Work"].Color)
	assert.Equal(t, colored.RecordName, byName["Work"].ID)

	got, ok := c.ListByName("hOmE")
	require.True(t, ok)
	assert.Equal(t, child.RecordName, got.ID)

	// First non-group list in cache order is the default.
	def, ok := c.DefaultList()
	require.True(t, ok)
	assert.Equal(t, "Home", def.Name)
}

func TestHashtags(t *testing.T) {
	c, fake := newTestClient(t)
	for _, name := range []string{"work", "urgent", "work"} {
		rec := models.Record{RecordName: models.NewRecordName(models.TypeHashtag), RecordType: models.TypeHashtag}
		rec.SetField("Name", models.String(name))
		fake.Seed(rec)
	}
	deleted := models.Record{RecordName: models.NewRecordName(models.TypeHashtag), RecordType: models.TypeHashtag}
	deleted.SetField("Name", models.String("old"))
	deleted.SetField("Deleted", models.Int64(1))
	fake.Seed(deleted)

	refresh(t, c)
	assert.Equal(t, []string{"urgent", "work"}, c.Hashtags())
}

func TestSmartLists(t *testing.T) {
	c, fake := newTestClient(t)
	rec := models.Record{RecordName: models.NewRecordName(models.TypeSmartList), RecordType: models.TypeSmartList}
	rec.SetField("SmartListType", models.String("com.apple.reminders.smartlist.today"))
	fake.Seed(rec)

	refresh(t, c)

	lists := c.SmartLists()
	require.Len(t, lists, 1)
	assert.Equal(t, "today", lists[0].Name)
}

func TestUnknownRecordTypesPassThrough(t *testing.T) {
	c, fake := newTestClient(t)
	fake.Seed(models.Record{RecordName: "Widget/X", RecordType: "Widget"})
	seedReminder(t, fake, "known", nil)

	refresh(t, c)
	assert.Len(t, c.Reminders(true), 1)
}

func TestReminderJSONShape(t *testing.T) {
	c, fake := newTestClient(t)
	seedReminder(t, fake, "shaped", func(rec *models.Record) {
		rec.SetField("Priority", models.Int64(5))
		rec.SetField("Flagged", models.Int64(1))
	})

	refresh(t, c)

	data, err := json.Marshal(c.Reminders(true)[0])
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "shaped", m["title"])
	assert.Equal(t, float64(5), m["priority"])
	assert.Equal(t, true, m["flagged"])
}

func idSet(rems []reminders.Reminder) map[string]bool {
	out := map[string]bool{}
	for _, r := range rems {
		out[r.ID] = true
	}
	return out
}
