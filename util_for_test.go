package reminders_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	reminders "github.com/cloudkit-tools/reminders.go"
	"github.com/cloudkit-tools/reminders.go/internal/fakeck"
	"github.com/cloudkit-tools/reminders.go/pkg/connection"
	"github.com/cloudkit-tools/reminders.go/pkg/models"
	"github.com/cloudkit-tools/reminders.go/pkg/titledoc"
)

// newTestClient stands up a fake zone server and a connected client.
func newTestClient(t *testing.T) (*reminders.Client, *fakeck.Server) {
	t.Helper()

	fake := fakeck.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	tx := connection.NewHTTP(connection.NewHTTPParams{BaseURL: srv.URL})

	c, err := reminders.New(reminders.Config{Transport: tx})
	require.NoError(t, err)
	require.NoError(t, c.Connect(context.Background()))
	return c, fake
}

func refresh(t *testing.T, c *reminders.Client) {
	t.Helper()
	require.NoError(t, c.Refresh(context.Background()))
}

// seedList stores a List record directly on the fake server.
func seedList(fake *fakeck.Server, name string, isGroup bool, parentID string) models.Record {
	rec := models.Record{
		RecordName: models.NewRecordName(models.TypeList),
		RecordType: models.TypeList,
	}
	rec.SetField("Name", models.String(name))
	rec.SetField("IsGroup", models.Int64(boolInt(isGroup)))
	rec.SetField("Deleted", models.Int64(0))
	if parentID != "" {
		rec.SetField("ParentList", models.Ref(parentID, fake.Zone(), models.ActionNone))
	}
	return fake.Seed(rec)
}

// seedReminder stores a Reminder record with an encoded title.
func seedReminder(t *testing.T, fake *fakeck.Server, title string, mutate func(*models.Record)) models.Record {
	t.Helper()

	doc, err := titledoc.EncodeField(title)
	require.NoError(t, err)

	rec := models.Record{
		RecordName: models.NewRecordName(models.TypeReminder),
		RecordType: models.TypeReminder,
	}
	rec.SetField("TitleDocument", models.EncryptedBytes(doc))
	rec.SetField("Completed", models.Int64(0))
	rec.SetField("Deleted", models.Int64(0))
	if mutate != nil {
		mutate(&rec)
	}
	return fake.Seed(rec)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
