package gdrive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dvloznov/statement-ledger/internal/docstore"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := New(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return store
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "'folder'", quote("folder"))
	assert.Equal(t, `'O\'Brien'`, quote("O'Brien"))
	assert.Equal(t, `'a\\b'`, quote(`a\b`))
}

func TestStore_List(t *testing.T) {
	var gotQuery string
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/files"))
		gotQuery = r.URL.Query().Get("q")
		writeJSON(t, w, map[string]interface{}{
			"files": []map[string]string{
				{"id": "2", "name": "Kontoauszug_2025_002.pdf"},
				{"id": "1", "name": "Kontoauszug_2025_001.pdf"},
			},
		})
	})

	files, err := store.List(context.Background(), "inbox-id")
	require.NoError(t, err)
	assert.Equal(t, "'inbox-id' in parents and trashed = false", gotQuery)
	assert.Equal(t, []domain.StatementFile{
		{ID: "1", Name: "Kontoauszug_2025_001.pdf"},
		{ID: "2", Name: "Kontoauszug_2025_002.pdf"},
	}, files)
}

func TestStore_Exists(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if strings.Contains(q, "'known.pdf'") {
			writeJSON(t, w, map[string]interface{}{"files": []map[string]string{{"id": "9", "name": "known.pdf"}}})
			return
		}
		writeJSON(t, w, map[string]interface{}{"files": []interface{}{}})
	})

	ok, err := store.Exists(context.Background(), "archive-id", "known.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(context.Background(), "archive-id", "new.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Download(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/files/missing") {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(t, w, map[string]interface{}{"error": map[string]interface{}{"code": 404, "message": "File not found"}})
			return
		}
		assert.Equal(t, "media", r.URL.Query().Get("alt"))
		_, _ = io.WriteString(w, "%PDF-1.4")
	})

	data, err := store.Download(context.Background(), domain.StatementFile{ID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	_, err = store.Download(context.Background(), domain.StatementFile{ID: "missing"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestStore_Move(t *testing.T) {
	var body map[string]interface{}
	var query map[string][]string
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/files/abc"))
		query = r.URL.Query()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(t, w, map[string]interface{}{"id": "abc", "name": body["name"]})
	})

	err := store.Move(context.Background(), domain.StatementFile{ID: "abc", Name: "Kontoauszug_2025_001_Giro_x.pdf"},
		"inbox-id", "archive-id", "Kontoauszug_2025_001_Giro.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Kontoauszug_2025_001_Giro.pdf", body["name"])
	assert.Equal(t, []string{"archive-id"}, query["addParents"])
	assert.Equal(t, []string{"inbox-id"}, query["removeParents"])
}
