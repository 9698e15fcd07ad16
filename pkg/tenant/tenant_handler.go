package tenant

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type TenantDTO struct {
	Id            int    `json:"id"`
	Uid           string `json:"uid"`
	Name          string `json:"name"`
	Currency      string `json:"currency,omitempty"`
	BillableUsers int    `json:"billableUsers,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) CurrentTenant(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	t, err := h.service.GetCurrentTenant(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoTenant) {
			http.Error(w, "no tenant resolved for request", http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(toDTO(t)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	log.Debug("Registering new tenant")
	w.Header().Set("Content-Type", "application/json")

	var dto TenantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Name == "" {
		http.Error(w, "tenant name is required", http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateTenant(r.Context(), fromDTO(dto))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateCurrentTenant(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto TenantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateCurrentTenant(r.Context(), fromDTO(dto))
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			http.Error(w, "Tenant not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(toDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetAvailableTenants(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	tenants, err := h.service.GetAllTenants(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]TenantDTO, 0, len(tenants))
	for _, t := range tenants {
		dtos = append(dtos, toDTO(t))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toDTO(t Tenant) TenantDTO {
	return TenantDTO{
		Id:            t.Id,
		Uid:           t.Uid,
		Name:          t.Name,
		Currency:      t.Currency,
		BillableUsers: t.BillableUsers,
	}
}

func fromDTO(dto TenantDTO) Tenant {
	return Tenant{
		Id:            dto.Id,
		Uid:           dto.Uid,
		Name:          dto.Name,
		Currency:      dto.Currency,
		BillableUsers: dto.BillableUsers,
	}
}
