package budget

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/presu/presu/pkg/grid"
	"github.com/presu/presu/pkg/moneyfmt"
	log "github.com/sirupsen/logrus"
)

type CellDTO struct {
	Month   int     `json:"month"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

type ConceptDTO struct {
	Id               int64     `json:"id"`
	CategoryId       int64     `json:"categoryId"`
	Name             string    `json:"name"`
	BaseValue        float64   `json:"baseValue"`
	BaseValueDisplay string    `json:"baseValueDisplay"`
	FirstActiveMonth int       `json:"firstActiveMonth"`
	ActiveMonths     []int     `json:"activeMonths"`
	Indexed          bool      `json:"indexed"`
	Cells            []CellDTO `json:"cells"`
}

type CategoryDTO struct {
	Id       int64        `json:"id"`
	Name     string       `json:"name"`
	Position int          `json:"position"`
	Concepts []ConceptDTO `json:"concepts"`
	// Cells carries the directly editable cells of a concept-less category.
	Cells  []CellDTO `json:"cells,omitempty"`
	Totals []CellDTO `json:"totals"`
}

type GridDTO struct {
	Year        int           `json:"year"`
	Categories  []CategoryDTO `json:"categories"`
	GrandTotals []CellDTO     `json:"grandTotals"`
}

type EditCellDTO struct {
	Year       int    `json:"year"`
	CategoryId int64  `json:"categoryId"`
	ConceptId  int64  `json:"conceptId"`
	Month      int    `json:"month"`
	RawText    string `json:"rawText"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) GetGrid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}

	data, err := h.service.GetGrid(r.Context(), year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(toGridDTO(data)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// EditCell applies one full edit cycle to a cell. A write the store rejects
// answers 409 so the client knows the returned grid is the reloaded state,
// not the value it sent.
func (h *Handler) EditCell(w http.ResponseWriter, r *http.Request) {
	log.Debug("Editing budget cell")
	w.Header().Set("Content-Type", "application/json")

	var dto EditCellDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := h.service.EditCell(r.Context(), dto.Year, dto.CategoryId, dto.ConceptId, dto.Month, dto.RawText)
	switch {
	case errors.Is(err, ErrCategoryNotFound) || errors.Is(err, ErrConceptNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, ErrInvalidMonth) || errors.Is(err, ErrInactiveMonth):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil && data != nil:
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(toGridDTO(data))
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(toGridDTO(data)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating budget category")
	w.Header().Set("Content-Type", "application/json")

	var dto CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), dto.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(CategoryDTO{Id: category.Id, Name: category.Name, Position: category.Position}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := pathId(r)
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}
	var dto CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateCategory(r.Context(), Category{Id: id, Name: dto.Name, Position: dto.Position})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !updated {
		http.Error(w, "category not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}
	deleted, err := h.service.DeleteCategory(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "category not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateConcept(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating budget concept")
	w.Header().Set("Content-Type", "application/json")

	var dto ConceptDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	concept, err := h.service.CreateConcept(r.Context(), fromConceptDTO(dto))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toConceptDTO(concept, nil)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateConcept(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := pathId(r)
	if err != nil {
		http.Error(w, "invalid concept id", http.StatusBadRequest)
		return
	}
	var dto ConceptDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	concept := fromConceptDTO(dto)
	concept.Id = id

	updated, err := h.service.UpdateConcept(r.Context(), concept)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !updated {
		http.Error(w, "concept not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteConcept(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		http.Error(w, "invalid concept id", http.StatusBadRequest)
		return
	}
	deleted, err := h.service.DeleteConcept(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "concept not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathId(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func fromConceptDTO(dto ConceptDTO) Concept {
	return Concept{
		Id:               dto.Id,
		CategoryId:       dto.CategoryId,
		Name:             dto.Name,
		BaseValue:        dto.BaseValue,
		FirstActiveMonth: dto.FirstActiveMonth,
		ActiveMonths:     dto.ActiveMonths,
		Indexed:          dto.Indexed,
	}
}

func toConceptDTO(c Concept, cells []CellDTO) ConceptDTO {
	return ConceptDTO{
		Id:               c.Id,
		CategoryId:       c.CategoryId,
		Name:             c.Name,
		BaseValue:        c.BaseValue,
		BaseValueDisplay: moneyfmt.FormatForDisplay(c.BaseValue),
		FirstActiveMonth: c.FirstActiveMonth,
		ActiveMonths:     c.ActiveMonths,
		Indexed:          c.Indexed,
		Cells:            cells,
	}
}

func toGridDTO(data *GridData) GridDTO {
	g := data.Grid
	dto := GridDTO{Year: data.Year}

	for _, cat := range data.Categories {
		catDTO := CategoryDTO{Id: cat.Id, Name: cat.Name, Position: cat.Position}
		for _, c := range cat.Concepts {
			row := grid.RowKey{ParentID: cat.Id, ChildID: c.Id}
			catDTO.Concepts = append(catDTO.Concepts, toConceptDTO(c, rowCells(g, row)))
		}
		if len(cat.Concepts) == 0 {
			catDTO.Cells = rowCells(g, grid.RowKey{ParentID: cat.Id})
		}
		for _, month := range g.Columns() {
			total := g.Total(cat.Id, month)
			catDTO.Totals = append(catDTO.Totals, CellDTO{
				Month:   month,
				Value:   total,
				Display: moneyfmt.FormatForDisplay(total),
			})
		}
		dto.Categories = append(dto.Categories, catDTO)
	}

	for _, month := range g.Columns() {
		total := g.GrandTotal(month)
		dto.GrandTotals = append(dto.GrandTotals, CellDTO{
			Month:   month,
			Value:   total,
			Display: moneyfmt.FormatForDisplay(total),
		})
	}
	return dto
}

// rowCells collects the cells of one row, overlay text included so a client
// rendering mid-edit sees exactly what was typed.
func rowCells(g *grid.Grid, row grid.RowKey) []CellDTO {
	var cells []CellDTO
	for _, month := range g.Columns() {
		key := grid.CellKey{Row: row, Column: month}
		if !g.Exists(key) && g.Display(key) == "" {
			continue
		}
		cells = append(cells, CellDTO{Month: month, Value: g.Value(key), Display: g.Display(key)})
	}
	return cells
}
