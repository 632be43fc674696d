package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/drive"
	"github.com/andresuchdata/stockweeks/internal/feed"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Handler serves read-only views of the feed files in a Drive folder.
type Handler struct {
	files    feedFiles
	folderID string
}

type feedFiles interface {
	ListFiles(ctx context.Context, folderID string) ([]*drive.File, error)
	feed.DriveFiles
}

func NewHandler(files feedFiles, folderID string) *Handler {
	return &Handler{files: files, folderID: folderID}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/api/feeds", h.ListFeeds).Methods("GET")
	router.HandleFunc("/api/feeds/{brand}", h.InspectFeed).Methods("GET")
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

type feedFile struct {
	Brand        domain.Brand `json:"brand"`
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ModifiedTime string       `json:"modified_time,omitempty"`
	Size         int64        `json:"size"`
}

// ListFeeds lists the folder files that belong to a known brand.
func (h *Handler) ListFeeds(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.ListFiles(r.Context(), h.folderID)
	if err != nil {
		log.Error().Err(err).Str("folder", h.folderID).Msg("list drive folder failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	names := make(map[string]domain.Brand, len(domain.Brands))
	for _, b := range domain.Brands {
		names[feed.FileName(b)] = b
	}

	out := make([]feedFile, 0, len(files))
	for _, f := range files {
		brand, ok := names[f.Name]
		if !ok {
			continue
		}
		out = append(out, feedFile{
			Brand:        brand,
			ID:           f.ID,
			Name:         f.Name,
			ModifiedTime: f.ModifiedTime,
			Size:         f.Size,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

type categoryInfo struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	SubCategories []string `json:"sub_categories,omitempty"`
	// MonthsWithFigures counts year/month entries that carry figures.
	MonthsWithFigures int `json:"months_with_figures"`
	MonthsUnavailable int `json:"months_unavailable"`
}

type feedInfo struct {
	Brand      domain.Brand   `json:"brand"`
	File       feedFile       `json:"file"`
	Years      []int          `json:"years"`
	Categories []categoryInfo `json:"categories"`
}

// InspectFeed downloads and decodes one brand feed and reports its shape.
func (h *Handler) InspectFeed(w http.ResponseWriter, r *http.Request) {
	brand, err := domain.ParseBrand(mux.Vars(r)["brand"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	name := feed.FileName(brand)
	file, err := h.files.FindFile(r.Context(), h.folderID, name)
	if err != nil {
		if errors.Is(err, drive.ErrFileNotFound) {
			http.Error(w, name+" not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if err := h.files.DownloadFile(r.Context(), file.ID, &buf); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	decoded, err := feed.Decode(&buf, brand)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	info := feedInfo{
		Brand: brand,
		File: feedFile{
			Brand:        brand,
			ID:           file.ID,
			Name:         file.Name,
			ModifiedTime: file.ModifiedTime,
			Size:         file.Size,
		},
		Years: decoded.Years(),
	}
	for _, code := range decoded.OrderedCategories() {
		cat := decoded.Categories[code]
		ci := categoryInfo{
			Code:          code,
			Name:          domain.CategoryName(code),
			SubCategories: cat.SubCategoryNames(),
		}
		for _, months := range cat.Years {
			for _, figures := range months {
				if figures == nil {
					ci.MonthsUnavailable++
				} else {
					ci.MonthsWithFigures++
				}
			}
		}
		info.Categories = append(info.Categories, ci)
	}

	writeJSON(w, http.StatusOK, info)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response failed")
	}
}
