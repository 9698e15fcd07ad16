package payments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/presu/presu/pkg/moneyfmt"
	log "github.com/sirupsen/logrus"
)

type CheckoutDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// UnitPrice arrives as the raw text of the price field.
	UnitPrice string `json:"unitPrice"`
}

type RedirectDTO struct {
	RedirectURL string `json:"redirectUrl"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) CreatePreference(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating payment preference")
	w.Header().Set("Content-Type", "application/json")

	var dto CheckoutDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	unitPrice := moneyfmt.ParseNumber(dto.UnitPrice)
	if unitPrice <= 0 {
		http.Error(w, "unit price must be positive", http.StatusBadRequest)
		return
	}

	redirectURL, err := h.service.CreateCheckout(r.Context(), Checkout{
		Title:       dto.Title,
		Description: dto.Description,
		UnitPrice:   unitPrice,
	})
	if errors.Is(err, ErrNoRedirectURL) {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(RedirectDTO{RedirectURL: redirectURL}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
