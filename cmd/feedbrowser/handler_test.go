package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/drive"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFolder struct {
	files    []*drive.File
	contents map[string]string
}

func (f *fakeFolder) ListFiles(ctx context.Context, folderID string) ([]*drive.File, error) {
	return f.files, nil
}

func (f *fakeFolder) FindFile(ctx context.Context, folderID, name string) (*drive.File, error) {
	for _, file := range f.files {
		if file.Name == name {
			return file, nil
		}
	}
	return nil, drive.ErrFileNotFound
}

func (f *fakeFolder) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	_, err := io.Copy(w, strings.NewReader(f.contents[fileID]))
	return err
}

func newTestRouter() *mux.Router {
	folder := &fakeFolder{
		files: []*drive.File{
			{ID: "1", Name: "stock_weeks_MLB.json", ModifiedTime: "2025-03-01T00:00:00Z", Size: 120},
			{ID: "2", Name: "notes.txt"},
			{ID: "3", Name: "stock_weeks_DISCOVERY.json"},
		},
		contents: map[string]string{
			"1": `{"Shoes": {
				"2025": {"1": {"baseFigures": {"daysInMonth": 31, "totalStockValue": 10}}, "2": {"baseFigures": null}},
				"subCategories": {"Sneakers": {"2025": {"1": {"daysInMonth": 31}}}}
			}}`,
			"3": `[1, 2]`,
		},
	}
	r := mux.NewRouter()
	NewHandler(folder, "folder").RegisterRoutes(r)
	return r
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestListFeeds(t *testing.T) {
	w := get(t, newTestRouter(), "/api/feeds")
	require.Equal(t, http.StatusOK, w.Code)

	var files []feedFile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &files))
	require.Len(t, files, 2)
	assert.Equal(t, domain.BrandMLB, files[0].Brand)
	assert.Equal(t, domain.BrandDiscovery, files[1].Brand)
}

func TestInspectFeed(t *testing.T) {
	w := get(t, newTestRouter(), "/api/feeds/mlb")
	require.Equal(t, http.StatusOK, w.Code)

	var info feedInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, domain.BrandMLB, info.Brand)
	assert.Equal(t, []int{2025}, info.Years)
	require.Len(t, info.Categories, 1)
	assert.Equal(t, []string{"Sneakers"}, info.Categories[0].SubCategories)
	assert.Equal(t, 1, info.Categories[0].MonthsWithFigures)
	assert.Equal(t, 1, info.Categories[0].MonthsUnavailable)
}

func TestInspectFeed_Errors(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		target string
		status int
	}{
		{"/api/feeds/nike", http.StatusNotFound},
		{"/api/feeds/mlb_kids", http.StatusNotFound},
		{"/api/feeds/discovery", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.status, get(t, router, tt.target).Code)
		})
	}
}

func TestHealth(t *testing.T) {
	w := get(t, newTestRouter(), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}
