package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClient_SendsBearerAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"id":"rec1","fields":{}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "appBASE", "secret-key")
	_, err := c.GetRecord(context.Background(), "Users", "rec1")
	assert.NoError(t, err)
	assert.Equal(t, "Bearer secret-key", gotAuth)
}

func TestClient_ListFollowsPagination(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Query().Get("offset") {
		case "":
			fmt.Fprint(w, `{"records":[{"id":"rec1","fields":{}},{"id":"rec2","fields":{}}],"offset":"itr/2"}`)
		case "itr/2":
			fmt.Fprint(w, `{"records":[{"id":"rec3","fields":{}}]}`)
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "appBASE", "key")
	recs, err := c.ListRecords(context.Background(), "Bounties", ListOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, recs, 3)
	assert.Equal(t, "rec3", recs[2].ID)
}

func TestClient_ListSendsQueryOptions(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `{"records":[]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "appBASE", "key")
	_, err := c.ListRecords(context.Background(), "Users", ListOptions{
		FilterByFormula: FieldEquals("Email", "alice@example.com"),
		MaxRecords:      1,
		PageSize:        50,
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"{Email}='alice@example.com'"}, gotQuery["filterByFormula"])
	assert.Equal(t, []string{"1"}, gotQuery["maxRecords"])
	assert.Equal(t, []string{"50"}, gotQuery["pageSize"])
}

func TestClient_CreateAndUpdateBodies(t *testing.T) {
	type fields struct {
		Name string `json:"Name"`
	}
	var gotMethod string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"id":"rec1","fields":{"Name":"alice"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "appBASE", "key")

	rec, err := c.CreateRecord(context.Background(), "Users", &fields{Name: "alice"})
	assert.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, map[string]any{"fields": map[string]any{"Name": "alice"}}, gotBody)
	assert.Equal(t, "rec1", rec.ID)

	_, err = c.UpdateRecord(context.Background(), "Users", "rec1", &fields{Name: "bob"})
	assert.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
}

func TestClient_ErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"type":"NOT_FOUND","message":"record not found"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "appBASE", "key")
	_, err := c.GetRecord(context.Background(), "Users", "recMISSING")
	assert.True(t, IsNotFound(err))

	var apiErr *Error
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_FOUND", apiErr.Type)
	assert.Equal(t, "record not found", apiErr.Message)
}

func TestClient_ErrorMappingStringBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"NOT_FOUND"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "appBASE", "key")
	_, err := c.GetRecord(context.Background(), "Users", "recMISSING")
	assert.True(t, IsNotFound(err))

	var apiErr *Error
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_FOUND", apiErr.Type)
}

func TestFormulaHelpers(t *testing.T) {
	assert.Equal(t, "{Email}='a@b.c'", FieldEquals("Email", "a@b.c"))
	assert.Equal(t, "SEARCH('rec1', ARRAYJOIN({Active Bounties}))",
		ListContains("Active Bounties", "rec1"))
	assert.Equal(t, "AND({A}='1', {B}='2')",
		And(FieldEquals("A", "1"), FieldEquals("B", "2")))
	assert.Equal(t, "OR({A}='1', {B}='2')",
		Or(FieldEquals("A", "1"), FieldEquals("B", "2")))
	assert.Equal(t, `{Name}='O\'Brien'`, FieldEquals("Name", "O'Brien"))
}
