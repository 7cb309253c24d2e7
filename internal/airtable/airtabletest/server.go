// Package airtabletest runs an in-memory stand-in for the Airtable API over
// httptest, implementing the record CRUD, offset pagination, and the
// filterByFormula grammar the repositories emit. Tests seed tables directly
// and assert on stored fields.
package airtabletest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable"
)

const (
	baseID   = "appTESTBASE000000"
	apiKey   = "key-test"
	pageSize = 100
)

type table struct {
	order   []string
	records map[string]map[string]any
}

type Server struct {
	srv *httptest.Server

	mu     sync.Mutex
	seq    int
	tables map[string]*table
	hook   func(method, tbl, id string) int
}

func NewServer() *Server {
	s := &Server{tables: map[string]*table{}}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *Server) Close() { s.srv.Close() }

// Client returns an airtable client pointed at this fake base.
func (s *Server) Client() *airtable.Client {
	return airtable.NewClient(s.srv.URL, baseID, apiKey)
}

// SetHook installs a fault-injection hook. A non-zero return becomes the
// response status for that request; pass nil to clear.
func (s *Server) SetHook(hook func(method, tbl, id string) int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

// Seed inserts a record and returns its generated ID.
func (s *Server) Seed(tbl string, fields map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(tbl, normalize(fields))
}

// SetFields merges fields into an existing record, for test setup that needs
// IDs generated by earlier seeds.
func (s *Server) SetFields(tbl, id string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tables[tbl]
	if t == nil || t.records[id] == nil {
		panic(fmt.Sprintf("airtabletest: SetFields on missing record %s/%s", tbl, id))
	}
	for k, v := range normalize(fields) {
		t.records[id][k] = v
	}
}

// Fields returns a copy of a record's stored fields, or nil when absent.
func (s *Server) Fields(tbl, id string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tables[tbl]
	if t == nil {
		return nil
	}
	rec, ok := t.records[id]
	if !ok {
		return nil
	}
	out := map[string]any{}
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// RecordIDs returns the table's record IDs in insertion order.
func (s *Server) RecordIDs(tbl string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tables[tbl]
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

func (s *Server) insert(tbl string, fields map[string]any) string {
	t := s.tables[tbl]
	if t == nil {
		t = &table{records: map[string]map[string]any{}}
		s.tables[tbl] = t
	}
	s.seq++
	id := fmt.Sprintf("rec%014d", s.seq)
	t.records[id] = fields
	t.order = append(t.order, id)
	return id
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+apiKey {
		writeErr(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "invalid api key")
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != baseID {
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "unknown base")
		return
	}
	tbl, _ := unescape(parts[1])
	id := ""
	if len(parts) == 3 {
		id, _ = unescape(parts[2])
	}

	if s.hook != nil {
		if status := s.hook(r.Method, tbl, id); status != 0 {
			writeErr(w, status, "INJECTED_FAILURE", "injected failure")
			return
		}
	}

	switch {
	case r.Method == http.MethodGet && id == "":
		s.list(w, r, tbl)
	case r.Method == http.MethodGet:
		s.get(w, tbl, id)
	case r.Method == http.MethodPost && id == "":
		s.create(w, r, tbl)
	case r.Method == http.MethodPatch && id != "":
		s.update(w, r, tbl, id)
	case r.Method == http.MethodDelete && id != "":
		s.delete(w, tbl, id)
	default:
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "unsupported route")
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, tbl string) {
	t := s.tables[tbl]
	if t == nil {
		t = &table{records: map[string]map[string]any{}}
	}

	q := r.URL.Query()
	var matcher func(map[string]any) bool
	if formula := q.Get("filterByFormula"); formula != "" {
		expr, err := parseFormula(formula)
		if err != nil {
			writeErr(w, http.StatusUnprocessableEntity, "INVALID_FILTER_BY_FORMULA", err.Error())
			return
		}
		matcher = expr.eval
	}

	var matched []record
	for _, id := range t.order {
		fields := t.records[id]
		if matcher != nil && !matcher(fields) {
			continue
		}
		matched = append(matched, record{ID: id, CreatedTime: time.Now().UTC(), Fields: fields})
	}

	if maxStr := q.Get("maxRecords"); maxStr != "" {
		if max, err := strconv.Atoi(maxStr); err == nil && max < len(matched) {
			matched = matched[:max]
		}
	}

	size := pageSize
	if psStr := q.Get("pageSize"); psStr != "" {
		if ps, err := strconv.Atoi(psStr); err == nil && ps > 0 {
			size = ps
		}
	}

	start := 0
	if off := q.Get("offset"); off != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(off, "itr/"))
		if err != nil {
			writeErr(w, http.StatusUnprocessableEntity, "LIST_RECORDS_ITERATOR_NOT_AVAILABLE", "bad offset")
			return
		}
		start = n
	}

	end := start + size
	page := struct {
		Records []record `json:"records"`
		Offset  string   `json:"offset,omitempty"`
	}{}
	if start < len(matched) {
		if end > len(matched) {
			end = len(matched)
		}
		page.Records = matched[start:end]
		if end < len(matched) {
			page.Offset = "itr/" + strconv.Itoa(end)
		}
	}
	if page.Records == nil {
		page.Records = []record{}
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) get(w http.ResponseWriter, tbl, id string) {
	t := s.tables[tbl]
	if t == nil || t.records[id] == nil {
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "record not found")
		return
	}
	writeJSON(w, http.StatusOK, record{ID: id, CreatedTime: time.Now().UTC(), Fields: t.records[id]})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, tbl string) {
	var body struct {
		Fields map[string]any `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusUnprocessableEntity, "INVALID_REQUEST_BODY", err.Error())
		return
	}
	id := s.insert(tbl, normalize(body.Fields))
	writeJSON(w, http.StatusOK, record{ID: id, CreatedTime: time.Now().UTC(), Fields: s.tables[tbl].records[id]})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, tbl, id string) {
	t := s.tables[tbl]
	if t == nil || t.records[id] == nil {
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "record not found")
		return
	}
	var body struct {
		Fields map[string]any `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusUnprocessableEntity, "INVALID_REQUEST_BODY", err.Error())
		return
	}
	for k, v := range normalize(body.Fields) {
		if v == nil {
			delete(t.records[id], k)
			continue
		}
		t.records[id][k] = v
	}
	writeJSON(w, http.StatusOK, record{ID: id, CreatedTime: time.Now().UTC(), Fields: t.records[id]})
}

func (s *Server) delete(w http.ResponseWriter, tbl, id string) {
	t := s.tables[tbl]
	if t == nil || t.records[id] == nil {
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "record not found")
		return
	}
	delete(t.records, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

type record struct {
	ID          string         `json:"id"`
	CreatedTime time.Time      `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

// normalize round-trips fields through JSON so seeded Go values and decoded
// request bodies share one representation (numbers as float64, lists as
// []any).
func normalize(fields map[string]any) map[string]any {
	data, err := json.Marshal(fields)
	if err != nil {
		return fields
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fields
	}
	return out
}

func unescape(s string) (string, error) {
	out, err := url.PathUnescape(s)
	if err != nil {
		return s, err
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, typ, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"type": typ, "message": msg},
	})
}
