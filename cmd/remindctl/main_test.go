package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	reminders "github.com/cloudkit-tools/reminders.go"
	"github.com/cloudkit-tools/reminders.go/internal/fakeck"
	"github.com/cloudkit-tools/reminders.go/pkg/models"
	"github.com/cloudkit-tools/reminders.go/pkg/titledoc"
)

// runCommand executes one remindctl invocation against a fake server.
func runCommand(t *testing.T, fake *fakeck.Server, args ...string) (string, error) {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	cfg := writeConfig(t, fmt.Sprintf("base_url = %q\n", srv.URL))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func seedFake(t *testing.T) *fakeck.Server {
	t.Helper()
	fake := fakeck.New()

	list := models.Record{RecordName: models.NewRecordName(models.TypeList), RecordType: models.TypeList}
	list.SetField("Name", models.String("Inbox"))
	list.SetField("IsGroup", models.Int64(0))
	fake.Seed(list)

	doc, err := titledoc.EncodeField("Walk the dog")
	if err != nil {
		t.Fatalf("encode title: %v", err)
	}
	rem := models.Record{RecordName: models.NewRecordName(models.TypeReminder), RecordType: models.TypeReminder}
	rem.SetField("TitleDocument", models.EncryptedBytes(doc))
	rem.SetField("Completed", models.Int64(0))
	rem.SetField("List", models.Ref(list.RecordName, fake.Zone(), models.ActionNone))
	fake.Seed(rem)

	return fake
}

func TestListsCommand(t *testing.T) {
	out, err := runCommand(t, seedFake(t), "lists")
	if err != nil {
		t.Fatalf("lists: %v", err)
	}
	if !strings.Contains(out, "Inbox (default)") {
		t.Fatalf("unexpected lists output: %q", out)
	}
}

func TestPendingCommandJSON(t *testing.T) {
	out, err := runCommand(t, seedFake(t), "pending", "--json")
	if err != nil {
		t.Fatalf("pending: %v", err)
	}

	var rems []reminders.Reminder
	if err := json.Unmarshal([]byte(out), &rems); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(rems) != 1 || rems[0].Title != "Walk the dog" {
		t.Fatalf("unexpected reminders: %+v", rems)
	}
}

func TestCreateCommand(t *testing.T) {
	fake := seedFake(t)
	out, err := runCommand(t, fake,
		"create", "Buy", "milk",
		"--due", "2026-09-01 08:00",
		"--alarm", "15",
		"--tag", "errands",
		"--priority", "high",
	)
	if err != nil {
		t.Fatalf("create: %v\n%s", err, out)
	}
	if !strings.Contains(out, `created "Buy milk" in Inbox`) {
		t.Fatalf("unexpected create output: %q", out)
	}
	// 1 list + 1 seeded reminder + reminder, alarm, trigger, hashtag.
	if fake.Len() != 6 {
		t.Fatalf("unexpected record count: %d", fake.Len())
	}
}

func TestCompleteAndSummaryCommands(t *testing.T) {
	fake := seedFake(t)

	out, err := runCommand(t, fake, "complete", "dog")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !strings.Contains(out, `completed "Walk the dog"`) {
		t.Fatalf("unexpected complete output: %q", out)
	}

	out, err = runCommand(t, fake, "summary", "--json")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	var data summaryData
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if data.Pending != 0 {
		t.Fatalf("expected no pending reminders, got %d", data.Pending)
	}
}

func TestSearchCommandMiss(t *testing.T) {
	out, err := runCommand(t, seedFake(t), "search", "unicorn")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "no reminders") {
		t.Fatalf("unexpected search output: %q", out)
	}
}

func TestDeleteCommand(t *testing.T) {
	fake := seedFake(t)
	out, err := runCommand(t, fake, "delete", "dog")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out, `deleted "Walk the dog"`) {
		t.Fatalf("unexpected delete output: %q", out)
	}
	if fake.Len() != 1 {
		t.Fatalf("expected only the list to remain, got %d records", fake.Len())
	}
}

func TestParseDue(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	got, err := parseDue("2026-03-01 14:30", false, loc)
	if err != nil {
		t.Fatalf("parse timed: %v", err)
	}
	want := time.Date(2026, time.March, 1, 14, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("timed: got %v want %v", got, want)
	}

	got, err = parseDue("2026-03-01", true, loc)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	want = time.Date(2026, time.March, 1, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("date: got %v want %v", got, want)
	}

	if _, err := parseDue("next tuesday", false, loc); err == nil {
		t.Fatal("expected parse error")
	}
}
