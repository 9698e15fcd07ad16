package indexation

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/presu/presu/pkg/moneyfmt"
	log "github.com/sirupsen/logrus"
)

type RateDTO struct {
	Month int     `json:"month"`
	Rate  float64 `json:"rate"`
}

type SetRateDTO struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Rate  string `json:"rate"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}

	rates, err := h.service.GetRates(r.Context(), year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]RateDTO, 0, len(rates))
	for month := 1; month <= 12; month++ {
		if rate, ok := rates[month]; ok {
			dtos = append(dtos, RateDTO{Month: month, Rate: rate})
		}
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SetRate(w http.ResponseWriter, r *http.Request) {
	log.Debug("Storing IPC rate")
	w.Header().Set("Content-Type", "application/json")

	var dto SetRateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// rates arrive as the raw text of the percentage field
	rate := moneyfmt.ParseRate(dto.Rate)
	if err := h.service.SetRate(r.Context(), dto.Year, dto.Month, rate); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
