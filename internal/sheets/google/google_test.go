package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"outlay/internal/testutil"
)

// fakeSheets records the API calls made against a spreadsheet.
type fakeSheets struct {
	mu     sync.Mutex
	titles []string
	calls  []string
	values [][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/v4/spreadsheets/"):
		f.calls = append(f.calls, "get")
		sheets := make([]map[string]any, 0, len(f.titles))
		for _, t := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "batchUpdate")
		var req gsheet.BatchUpdateSpreadsheetRequest
		json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.titles = append(f.titles, rq.AddSheet.Properties.Title)
			}
		}
		io.WriteString(w, `{}`)

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		f.values = nil
		io.WriteString(w, `{}`)

	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		f.calls = append(f.calls, "update:"+r.URL.Query().Get("valueInputOption"))
		var vr gsheet.ValueRange
		json.NewDecoder(r.Body).Decode(&vr)
		f.values = vr.Values
		io.WriteString(w, `{}`)

	default:
		http.Error(w, `{"error":{"code":404,"message":"unexpected call"}}`, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return newWithService(svc, "sheet-id")
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("New() error = %v, want missing GOOGLE_SPREADSHEET_ID", err)
	}
}

func TestNew_MissingCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "id", ServiceAccountFile: "/non/existent.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Errorf("New() error = %v, want read service account file error", err)
	}
}

func TestWriteSnapshot_CreatesTabOnce(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Sheet1"}}
	c := newTestClient(t, fake)
	ctx := context.Background()

	if err := c.WriteSnapshot(ctx, "u1", testutil.Expenses()); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
	if err := c.WriteSnapshot(ctx, "u1", testutil.Expenses()[:1]); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	want := []string{"get", "batchUpdate", "clear", "update:RAW", "clear", "update:RAW"}
	if strings.Join(fake.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
	if len(fake.titles) != 2 || fake.titles[1] != "Expenses-u1" {
		t.Errorf("titles = %v, want Expenses-u1 added", fake.titles)
	}
	if len(fake.values) != 2 {
		t.Fatalf("values = %v, want header and one row", fake.values)
	}
	if fake.values[1][1] != "Gum" {
		t.Errorf("row = %v, want Gum", fake.values[1])
	}
}

func TestWriteSnapshot_ExistingTab(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Expenses-u2"}}
	c := newTestClient(t, fake)

	if err := c.WriteSnapshot(context.Background(), "u2", nil); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
	want := []string{"get", "clear", "update:RAW"}
	if strings.Join(fake.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
}

func TestWriteSnapshot_NotInitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if err := c.WriteSnapshot(context.Background(), "u1", nil); err == nil {
		t.Fatal("expected error with nil service")
	}
}
