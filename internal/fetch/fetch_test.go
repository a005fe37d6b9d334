package fetch

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func TestSnapshotStoreSaveAndList(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), "raw"))
	require.NoError(t, store.Ensure())

	fetchedAt := time.Date(2024, 3, 1, 14, 0, 5, 0, time.UTC)
	name, err := store.Save("Jakarta", []byte(`{"ok":true}`), fetchedAt)
	require.NoError(t, err)
	assert.Equal(t, "Jakarta_20240301_140005.json", name)

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)

	payload, err := store.Read(name)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(payload))
}

func TestSnapshotStoreListIgnoresNonJSON(t *testing.T) {
	dir := t.TempDir()
	store := NewSnapshotStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestClientFetch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"key": r.URL.Query().Get("key"),
			"q":   r.URL.Query().Get("q"),
			"aqi": r.URL.Query().Get("aqi"),
		}
		w.Write([]byte(`{"location":{"name":"Jakarta"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, 5*time.Second)

	payload, err := client.Fetch("Jakarta")
	require.NoError(t, err)
	assert.JSONEq(t, `{"location":{"name":"Jakarta"}}`, string(payload))
	assert.Equal(t, "test-key", gotQuery["key"])
	assert.Equal(t, "Jakarta", gotQuery["q"])
	assert.Equal(t, "yes", gotQuery["aqi"])
}

func TestClientFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, 5*time.Second)

	_, err := client.Fetch("Jakarta")
	assert.Error(t, err)
}

func TestClientFetchMissingAPIKey(t *testing.T) {
	client := NewClient("", "http://localhost:0", 5*time.Second)
	_, err := client.Fetch("Jakarta")
	assert.Error(t, err)
}

func TestClientFetchInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, 5*time.Second)
	_, err := client.Fetch("Jakarta")
	assert.Error(t, err)
}

func TestFetcherStoresSnapshotsPerCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"location":{"name":"` + r.URL.Query().Get("q") + `"}}`))
	}))
	defer srv.Close()

	store := NewSnapshotStore(filepath.Join(t.TempDir(), "raw"))
	client := NewClient("test-key", srv.URL, 5*time.Second)

	count, err := NewFetcher(client, store, []string{"Jakarta", "Surabaya"}, testLogger()).Run()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	names, err := store.List()
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestFetcherFailedCityDoesNotAbortBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Jakarta" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"location":{"name":"Surabaya"}}`))
	}))
	defer srv.Close()

	store := NewSnapshotStore(filepath.Join(t.TempDir(), "raw"))
	client := NewClient("test-key", srv.URL, 5*time.Second)

	count, err := NewFetcher(client, store, []string{"Jakarta", "Surabaya"}, testLogger()).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFetcherFailsWithoutAPIKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "raw")
	store := NewSnapshotStore(dir)
	client := NewClient("", "http://localhost:0", 5*time.Second)

	count, err := NewFetcher(client, store, []string{"Jakarta", "Surabaya"}, testLogger()).Run()
	require.ErrorIs(t, err, errMissingAPIKey)
	assert.Equal(t, 0, count)

	// The stage must fail before touching the snapshot directory.
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}
