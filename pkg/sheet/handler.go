package sheet

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type ExportToGoogleDTO struct {
	Year          int    `json:"year"`
	SpreadsheetId string `json:"spreadsheetId"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) ImportBudget(w http.ResponseWriter, r *http.Request) {
	log.Debug("Importing budget workbook")
	w.Header().Set("Content-Type", "application/json")

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file part", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.service.ImportBudget(r.Context(), year, file)
	switch {
	case errors.Is(err, ErrMissingNameColumn) || errors.Is(err, ErrNoValueColumns) || errors.Is(err, ErrNotMonthColumn):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ExportBudget(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}

	f, err := h.service.ExportBudget(r.Context(), year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"budget-"+strconv.Itoa(year)+".xlsx\"")
	if err := f.Write(w); err != nil {
		log.Errorf("could not stream workbook: %v", err)
	}
}

func (h *Handler) ExportBudgetToGoogle(w http.ResponseWriter, r *http.Request) {
	log.Debug("Exporting budget to Google Sheets")

	var dto ExportToGoogleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.SpreadsheetId == "" {
		http.Error(w, "spreadsheetId is required", http.StatusBadRequest)
		return
	}

	if err := h.service.ExportBudgetToGoogle(r.Context(), dto.Year, dto.SpreadsheetId); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
