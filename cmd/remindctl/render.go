package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	reminders "github.com/cloudkit-tools/reminders.go"
)

// reminderFilter narrows the full snapshot to one view.
type reminderFilter func(*session, []reminders.Reminder) []reminders.Reminder

func filterAll(_ *session, rems []reminders.Reminder) []reminders.Reminder {
	return rems
}

func filterPending(_ *session, rems []reminders.Reminder) []reminders.Reminder {
	var out []reminders.Reminder
	for _, r := range rems {
		if !r.Completed {
			out = append(out, r)
		}
	}
	return out
}

func filterFlagged(_ *session, rems []reminders.Reminder) []reminders.Reminder {
	var out []reminders.Reminder
	for _, r := range rems {
		if r.Flagged && !r.Completed {
			out = append(out, r)
		}
	}
	return out
}

func filterToday(s *session, rems []reminders.Reminder) []reminders.Reminder {
	now := time.Now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1)

	var out []reminders.Reminder
	for _, r := range rems {
		if r.Completed || r.DueDate == nil {
			continue
		}
		due := r.DueDate.In(s.loc)
		if !due.Before(start) && due.Before(end) {
			out = append(out, r)
		}
	}
	return out
}

func filterOverdue(s *session, rems []reminders.Reminder) []reminders.Reminder {
	now := time.Now()
	var out []reminders.Reminder
	for _, r := range rems {
		if r.Completed || r.DueDate == nil {
			continue
		}
		if r.DueDate.Before(now) {
			out = append(out, r)
		}
	}
	return out
}

func emitJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderReminders(w io.Writer, rems []reminders.Reminder, asJSON bool) error {
	if asJSON {
		if rems == nil {
			rems = []reminders.Reminder{}
		}
		return emitJSON(w, rems)
	}
	if len(rems) == 0 {
		fmt.Fprintln(w, "no reminders")
		return nil
	}
	for _, r := range rems {
		fmt.Fprintln(w, formatReminder(r))
	}
	return nil
}

func formatReminder(r reminders.Reminder) string {
	var b strings.Builder

	mark := "[ ]"
	if r.Completed {
		mark = "[x]"
	}
	b.WriteString(mark)
	if r.Flagged {
		b.WriteString(" ⚑")
	}
	b.WriteString(" ")
	b.WriteString(r.Title)

	switch r.Priority {
	case reminders.PriorityHigh:
		b.WriteString("  !!!")
	case reminders.PriorityMedium:
		b.WriteString("  !!")
	case reminders.PriorityLow:
		b.WriteString("  !")
	}
	if r.DueDate != nil {
		if r.AllDay {
			b.WriteString("  due " + r.DueDate.Format("2006-01-02"))
		} else {
			b.WriteString("  due " + r.DueDate.Format("2006-01-02 15:04"))
		}
	}
	if r.Notes != "" {
		b.WriteString("\n      " + strings.ReplaceAll(r.Notes, "\n", "\n      "))
	}
	return b.String()
}

func renderLists(w io.Writer, lists []reminders.List, asJSON bool) error {
	if asJSON {
		if lists == nil {
			lists = []reminders.List{}
		}
		return emitJSON(w, lists)
	}
	if len(lists) == 0 {
		fmt.Fprintln(w, "no lists")
		return nil
	}

	// Groups first, their children indented beneath them.
	children := map[string][]reminders.List{}
	var top []reminders.List
	for _, l := range lists {
		if l.ParentID != "" {
			children[l.ParentID] = append(children[l.ParentID], l)
			continue
		}
		top = append(top, l)
	}
	for _, l := range top {
		printList(w, l, "")
		for _, child := range children[l.ID] {
			printList(w, child, "  ")
		}
	}
	return nil
}

func printList(w io.Writer, l reminders.List, indent string) {
	if l.IsGroup {
		fmt.Fprintf(w, "%s%s/\n", indent, l.Name)
		return
	}
	fmt.Fprintf(w, "%s%s (%s)\n", indent, l.Name, l.Color)
}

func renderTags(w io.Writer, tags []string, asJSON bool) error {
	if asJSON {
		if tags == nil {
			tags = []string{}
		}
		return emitJSON(w, tags)
	}
	if len(tags) == 0 {
		fmt.Fprintln(w, "no tags")
		return nil
	}
	for _, t := range tags {
		fmt.Fprintln(w, "#"+t)
	}
	return nil
}

// summaryData is the aggregate the summary command prints.
type summaryData struct {
	Lists   []listCount `json:"lists"`
	Pending int         `json:"pending"`
	Today   int         `json:"today"`
	Overdue int         `json:"overdue"`
	Flagged int         `json:"flagged"`
}

type listCount struct {
	Name    string `json:"name"`
	Pending int    `json:"pending"`
}

func buildSummary(s *session) summaryData {
	all := s.client.Reminders(true)

	byList := map[string]int{}
	for _, r := range filterPending(s, all) {
		byList[r.ListID]++
	}

	var data summaryData
	for _, l := range s.client.Lists() {
		if l.IsGroup {
			continue
		}
		data.Lists = append(data.Lists, listCount{Name: l.Name, Pending: byList[l.ID]})
	}
	sort.Slice(data.Lists, func(i, j int) bool { return data.Lists[i].Name < data.Lists[j].Name })

	data.Pending = len(filterPending(s, all))
	data.Today = len(filterToday(s, all))
	data.Overdue = len(filterOverdue(s, all))
	data.Flagged = len(filterFlagged(s, all))
	return data
}

func renderSummary(w io.Writer, data summaryData, asJSON bool) error {
	if asJSON {
		return emitJSON(w, data)
	}
	for _, lc := range data.Lists {
		fmt.Fprintf(w, "%-24s %d\n", lc.Name, lc.Pending)
	}
	fmt.Fprintf(w, "\npending %d · today %d · overdue %d · flagged %d\n",
		data.Pending, data.Today, data.Overdue, data.Flagged)
	return nil
}

func renderCreate(w io.Writer, out *reminders.CreateOutcome, asJSON bool) error {
	if asJSON {
		return emitJSON(w, out)
	}
	fmt.Fprintf(w, "created %q in %s (%s)\n", out.Title, out.ListName, out.ID)
	for _, link := range out.LinkFailures() {
		fmt.Fprintf(w, "warning: %s left unlinked: %v\n", link.RecordName, link.Err)
	}
	return nil
}

func renderUpdate(w io.Writer, out *reminders.UpdateOutcome, asJSON bool) error {
	if asJSON {
		return emitJSON(w, out)
	}
	fmt.Fprintf(w, "updated %q (%s)\n", out.Title, strings.Join(out.FieldsChanged, ", "))
	return nil
}

func renderComplete(w io.Writer, out *reminders.CompleteOutcome, asJSON bool) error {
	if asJSON {
		return emitJSON(w, out)
	}
	fmt.Fprintf(w, "completed %q\n", out.Title)
	return nil
}

func renderDelete(w io.Writer, out *reminders.DeleteOutcome, asJSON bool) error {
	if asJSON {
		return emitJSON(w, out)
	}
	if out.RelatedDeleted > 0 {
		fmt.Fprintf(w, "deleted %q and %d related records\n", out.Title, out.RelatedDeleted)
		return nil
	}
	fmt.Fprintf(w, "deleted %q\n", out.Title)
	return nil
}

func renderCreateList(w io.Writer, out *reminders.ListOutcome, asJSON bool) error {
	if asJSON {
		return emitJSON(w, out)
	}
	fmt.Fprintf(w, "created list %q (%s)\n", out.Name, out.Color)
	return nil
}
