// Command remindctl is a terminal front end for the reminders record
// store. It reads an authenticated session from a TOML config file,
// pulls a zone snapshot, and exposes the usual list / search / create /
// complete / delete operations.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	reminders "github.com/cloudkit-tools/reminders.go"
	"github.com/cloudkit-tools/reminders.go/pkg/connection"
	"github.com/cloudkit-tools/reminders.go/pkg/logger"
)

var (
	configPath string
	jsonOut    bool
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "remindctl:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "remindctl",
		Short:         "Manage reminders from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "emit JSON instead of text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	rootCmd.AddCommand(listsCmd())
	rootCmd.AddCommand(showCmd("all", "All reminders, completed included", filterAll))
	rootCmd.AddCommand(showCmd("pending", "Reminders not yet completed", filterPending))
	rootCmd.AddCommand(showCmd("today", "Reminders due today", filterToday))
	rootCmd.AddCommand(showCmd("overdue", "Reminders past their due date", filterOverdue))
	rootCmd.AddCommand(showCmd("flagged", "Flagged reminders", filterFlagged))
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(tagsCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(updateCmd())
	rootCmd.AddCommand(completeCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(createListCmd())
	return rootCmd
}

// session is a connected client plus the location used for date math.
type session struct {
	client *reminders.Client
	loc    *time.Location
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	log := logger.Nop()
	if verbose {
		data, err := logger.New().FromBuffer(os.Stderr).WithLevel(zerolog.DebugLevel).Make()
		if err != nil {
			return nil, err
		}
		log = data.Logger
	}

	tx := connection.NewHTTP(connection.NewHTTPParams{
		BaseURL: cfg.BaseURL,
		Query:   cfg.Query,
		Headers: cfg.Headers,
	})
	c, err := reminders.New(reminders.Config{
		Transport: tx,
		Logger:    &log,
		Timezone:  cfg.Timezone,
	})
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, err
		}
	}
	return &session{client: c, loc: loc}, nil
}

func listsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "Show reminder lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			return renderLists(cmd.OutOrStdout(), s.client.Lists(), jsonOut)
		},
	}
}

// showCmd builds one read-only reminder view over a filter.
func showCmd(use, short string, filter reminderFilter) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			rems := filter(s, s.client.Reminders(true))
			return renderReminders(cmd.OutOrStdout(), rems, jsonOut)
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search reminder titles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			needle := strings.ToLower(args[0])
			var hits []reminders.Reminder
			for _, r := range s.client.Reminders(true) {
				if strings.Contains(strings.ToLower(r.Title), needle) {
					hits = append(hits, r)
				}
			}
			return renderReminders(cmd.OutOrStdout(), hits, jsonOut)
		},
	}
}

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "Show hashtags in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			return renderTags(cmd.OutOrStdout(), s.client.Hashtags(), jsonOut)
		},
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Per-list counts plus today and overdue totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			return renderSummary(cmd.OutOrStdout(), buildSummary(s), jsonOut)
		},
	}
}

func createCmd() *cobra.Command {
	var (
		list       string
		notes      string
		urlFlag    string
		flagged    bool
		priority   string
		due        string
		allDay     bool
		alarm      int
		parent     string
		tags       []string
		repeat     string
		interval   int
		count      int
		until      string
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a reminder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}

			req := reminders.CreateRequest{
				Title:    strings.Join(args, " "),
				ListName: list,
				Notes:    notes,
				URL:      urlFlag,
				Flagged:  flagged,
				AllDay:   allDay,
				ParentID: parent,
				Tags:     tags,
			}

			req.Priority, err = reminders.ParsePriority(priority)
			if err != nil {
				return err
			}
			if due != "" {
				d, err := parseDue(due, allDay, s.loc)
				if err != nil {
					return err
				}
				req.DueDate = &d
			}
			if cmd.Flags().Changed("alarm") {
				req.AlarmMinutes = &alarm
			}
			if repeat != "" {
				rule, err := parseRecurrence(repeat, interval, count, until, s.loc)
				if err != nil {
					return err
				}
				req.Recurrence = rule
			}

			out, err := s.client.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			return renderCreate(cmd.OutOrStdout(), out, jsonOut)
		},
	}

	cmd.Flags().StringVar(&list, "list", "", "target list name (default: first list)")
	cmd.Flags().StringVar(&notes, "notes", "", "notes text")
	cmd.Flags().StringVar(&urlFlag, "url", "", "attached URL")
	cmd.Flags().BoolVar(&flagged, "flagged", false, "flag the reminder")
	cmd.Flags().StringVar(&priority, "priority", "", "high, medium, low, or none")
	cmd.Flags().StringVar(&due, "due", "", `due date ("2026-03-01" or "2026-03-01 14:00")`)
	cmd.Flags().BoolVar(&allDay, "all-day", false, "all-day reminder")
	cmd.Flags().IntVar(&alarm, "alarm", 0, "alert N minutes before due")
	cmd.Flags().StringVar(&parent, "parent", "", "parent reminder id (makes this a subtask)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "hashtag (repeatable)")
	cmd.Flags().StringVar(&repeat, "repeat", "", "daily, weekly, monthly, or yearly")
	cmd.Flags().IntVar(&interval, "interval", 1, "repeat every N periods")
	cmd.Flags().IntVar(&count, "count", 0, "stop after N occurrences")
	cmd.Flags().StringVar(&until, "until", "", "stop repeating at this date")
	return cmd
}

func updateCmd() *cobra.Command {
	var (
		title    string
		notes    string
		flagged  bool
		priority string
		due      string
		list     string
	)

	cmd := &cobra.Command{
		Use:   "update <reminder>",
		Short: "Change fields of a reminder",
		Long:  "Change fields of a reminder, found by record id or title substring. Only flags given on the command line are touched.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}

			var req reminders.UpdateRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("notes") {
				req.Notes = &notes
			}
			if cmd.Flags().Changed("flagged") {
				req.Flagged = &flagged
			}
			if cmd.Flags().Changed("priority") {
				p, err := reminders.ParsePriority(priority)
				if err != nil {
					return err
				}
				req.Priority = &p
			}
			if cmd.Flags().Changed("due") {
				d, err := parseDue(due, false, s.loc)
				if err != nil {
					return err
				}
				req.DueDate = &d
			}
			if cmd.Flags().Changed("list") {
				req.ListName = &list
			}

			out, err := s.client.Update(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return renderUpdate(cmd.OutOrStdout(), out, jsonOut)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")
	cmd.Flags().BoolVar(&flagged, "flagged", false, "set or clear the flag")
	cmd.Flags().StringVar(&priority, "priority", "", "high, medium, low, or none")
	cmd.Flags().StringVar(&due, "due", "", "new due date")
	cmd.Flags().StringVar(&list, "list", "", "move to this list")
	return cmd
}

func completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <reminder>",
		Short: "Mark a reminder completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			out, err := s.client.Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderComplete(cmd.OutOrStdout(), out, jsonOut)
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <reminder>",
		Short: "Delete a reminder and its alarms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			out, err := s.client.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderDelete(cmd.OutOrStdout(), out, jsonOut)
		},
	}
}

func createListCmd() *cobra.Command {
	var (
		color  string
		parent string
	)

	cmd := &cobra.Command{
		Use:   "create-list <name>",
		Short: "Create a reminder list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			out, err := s.client.CreateList(cmd.Context(), strings.Join(args, " "), color, parent)
			if err != nil {
				return err
			}
			return renderCreateList(cmd.OutOrStdout(), out, jsonOut)
		},
	}

	cmd.Flags().StringVar(&color, "color", "blue", "blue, red, green, orange, purple, or yellow")
	cmd.Flags().StringVar(&parent, "parent", "", "parent group name")
	return cmd
}

// parseDue accepts a bare date or a date with a time, interpreted in the
// configured timezone. All-day dates stay at midnight.
func parseDue(s string, allDay bool, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			if layout != time.RFC3339 {
				t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
			}
			return t, nil
		}
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	if allDay {
		return time.Time{}, fmt.Errorf("parse due date %q (want 2006-01-02)", s)
	}
	return time.Time{}, fmt.Errorf(`parse due date %q (want "2006-01-02" or "2006-01-02 15:04")`, s)
}

func parseRecurrence(repeat string, interval, count int, until string, loc *time.Location) (*reminders.Recurrence, error) {
	freq, err := reminders.ParseFrequency(repeat)
	if err != nil {
		return nil, err
	}
	rule := &reminders.Recurrence{Frequency: freq, Interval: interval, Count: count}
	if until != "" {
		end, err := time.ParseInLocation("2006-01-02", until, loc)
		if err != nil {
			return nil, fmt.Errorf("parse --until %q (want 2006-01-02)", until)
		}
		rule.EndDate = &end
	}
	return rule, nil
}
