// Package reminders is a client for the reminders record store: a
// record-oriented key-value store organized into typed records inside a
// versioned zone, synchronized via opaque change tokens, with optimistic
// concurrency enforced by per-record change tags.
//
// The client is built once over an authenticated transport
// (pkg/connection), bound to the Reminders zone with Connect, and filled
// with a full snapshot of the zone with Refresh. All read accessors
// serve from that snapshot; mutations resolve records and their change
// tags from the most recent snapshot, so callers should Refresh before
// mutating and after a batch of mutations.
//
//	tx := connection.NewHTTP(connection.NewHTTPParams{BaseURL: url, Query: session, Headers: headers})
//	c, err := reminders.New(reminders.Config{Transport: tx})
//	...
//	err = c.Connect(ctx)
//	err = c.Refresh(ctx)
//	for _, r := range c.Reminders(false) {
//		fmt.Println(r.Title)
//	}
//
// Rich-text title and notes fields travel in a custom binary document
// format handled by pkg/titledoc.
package reminders
