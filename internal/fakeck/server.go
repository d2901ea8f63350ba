// Package fakeck provides a fake reminders record-store server for
// testing purposes. It speaks the JSON zone/changes/modify protocol over
// HTTP and keeps one in-memory zone with per-record change tags, so the
// client's pagination, optimistic-concurrency, and cascading-delete
// behavior can be exercised without a real account.
//
// There is no executable binary for this package; tests mount a Server
// in an httptest.Server and point the HTTP transport at it.
package fakeck

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/cloudkit-tools/reminders.go/pkg/models"
)

// DefaultPageSize is the number of records per changes page.
const DefaultPageSize = 100

// Server is an in-memory single-zone record store.
type Server struct {
	mu       sync.Mutex
	zone     models.ZoneID
	records  map[string]models.Record
	order    []string
	tagSeq   int
	pageSize int

	failStatus int
	failCount  int
}

// New creates a Server with the standard Reminders zone.
func New() *Server {
	return &Server{
		zone: models.ZoneID{
			ZoneName:        "Reminders",
			OwnerRecordName: "_fake0000000000000000000000000000",
		},
		records:  map[string]models.Record{},
		pageSize: DefaultPageSize,
	}
}

// Zone returns the zone the server hosts.
func (s *Server) Zone() models.ZoneID { return s.zone }

// SetPageSize overrides the changes page size, for pagination tests.
func (s *Server) SetPageSize(n int) { s.pageSize = n }

// FailNextWith makes the next n requests return the given HTTP status.
func (s *Server) FailNextWith(status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
	s.failCount = n
}

// Seed stores a record directly, assigning it a change tag. It returns
// the stored copy.
func (s *Server) Seed(rec models.Record) models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.RecordChangeTag = s.nextTag()
	s.put(rec)
	return rec
}

// Record returns the stored record by name.
func (s *Server) Record(name string) (models.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[name]
	return clone(rec), ok
}

// BumpTag rewrites a record's change tag out of band, simulating a
// concurrent writer. The previous tag becomes stale.
func (s *Server) BumpTag(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[name]
	if !ok {
		return
	}
	rec.RecordChangeTag = s.nextTag()
	s.records[name] = rec
}

// Len reports the number of physically present records.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// ServeHTTP routes the three protocol endpoints.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.failCount > 0 {
		status := s.failStatus
		s.failCount--
		s.mu.Unlock()
		http.Error(w, `{"reason":"injected failure"}`, status)
		return
	}
	s.mu.Unlock()

	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	switch {
	case strings.HasSuffix(r.URL.Path, "/zones/list"):
		s.handleZones(w)
	case strings.HasSuffix(r.URL.Path, "/records/changes"):
		s.handleChanges(w, r)
	case strings.HasSuffix(r.URL.Path, "/records/modify"):
		s.handleModify(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleZones(w http.ResponseWriter) {
	writeJSON(w, models.ZonesResponse{Zones: []models.Zone{{ZoneID: s.zone}}})
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	var req models.ChangesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	offset := 0
	if req.SyncToken != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(req.SyncToken, "tok:"))
		if err != nil {
			http.Error(w, "bad sync token", http.StatusBadRequest)
			return
		}
		offset = n
	}
	if offset > len(s.order) {
		offset = len(s.order)
	}

	end := offset + s.pageSize
	if end > len(s.order) {
		end = len(s.order)
	}
	page := make([]models.Record, 0, end-offset)
	for _, name := range s.order[offset:end] {
		page = append(page, clone(s.records[name]))
	}

	writeJSON(w, models.ChangesResponse{
		Records:    page,
		MoreComing: end < len(s.order),
		SyncToken:  "tok:" + strconv.Itoa(end),
	})
}

func (s *Server) handleModify(w http.ResponseWriter, r *http.Request) {
	var req models.ModifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resp := models.ModifyResponse{Records: make([]models.Record, 0, len(req.Operations))}
	for _, op := range req.Operations {
		resp.Records = append(resp.Records, s.apply(op))
	}
	writeJSON(w, resp)
}

func (s *Server) apply(op models.Operation) models.Record {
	name := op.Record.RecordName
	stored, exists := s.records[name]

	switch op.OperationType {
	case models.OpCreate:
		if exists {
			return reject(name, models.ErrCodeExists, "record name already in use")
		}
		rec := clone(op.Record)
		rec.RecordChangeTag = s.nextTag()
		s.put(rec)
		return clone(rec)

	case models.OpUpdate:
		if !exists {
			return reject(name, models.ErrCodeNotFound, "record not found")
		}
		if op.Record.RecordChangeTag != stored.RecordChangeTag {
			return reject(name, models.ErrCodeConflict, "record change tag does not match")
		}
		for k, v := range op.Record.Fields {
			stored.SetField(k, v)
		}
		stored.RecordChangeTag = s.nextTag()
		s.records[name] = stored
		return clone(stored)

	case models.OpDelete:
		if !exists {
			return reject(name, models.ErrCodeNotFound, "record not found")
		}
		if op.Record.RecordChangeTag != "" && op.Record.RecordChangeTag != stored.RecordChangeTag {
			return reject(name, models.ErrCodeConflict, "record change tag does not match")
		}
		delete(s.records, name)
		for i, n := range s.order {
			if n == name {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return models.Record{RecordName: name, Deleted: true}

	default:
		return reject(name, "BAD_REQUEST", fmt.Sprintf("unknown operation %q", op.OperationType))
	}
}

func (s *Server) put(rec models.Record) {
	if _, ok := s.records[rec.RecordName]; !ok {
		s.order = append(s.order, rec.RecordName)
	}
	s.records[rec.RecordName] = rec
}

func (s *Server) nextTag() string {
	s.tagSeq++
	return "ck" + strconv.Itoa(s.tagSeq)
}

func reject(name, code, reason string) models.Record {
	return models.Record{RecordName: name, ServerErrorCode: code, Reason: reason}
}

func clone(rec models.Record) models.Record {
	if rec.Fields == nil {
		return rec
	}
	fields := make(map[string]models.FieldValue, len(rec.Fields))
	for k, v := range rec.Fields {
		fields[k] = v
	}
	rec.Fields = fields
	return rec
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
