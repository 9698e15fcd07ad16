package cashflow

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

type ItemDTO struct {
	Id        int64     `json:"id"`
	SectionId int64     `json:"sectionId"`
	Name      string    `json:"name"`
	Cells     []CellDTO `json:"cells"`
}

type SectionDTO struct {
	Id       int64     `json:"id"`
	Name     string    `json:"name"`
	Kind     string    `json:"kind"`
	Markup   float64   `json:"markup"`
	Position int       `json:"position"`
	Items    []ItemDTO `json:"items"`
	// Cells carries the directly editable cells of an item-less section.
	Cells  []CellDTO `json:"cells,omitempty"`
	Totals []CellDTO `json:"totals"`
	// MarkupTotals is present only for sections with a markup percentage.
	MarkupTotals []CellDTO `json:"markupTotals,omitempty"`
}

type GridDTO struct {
	Year        int          `json:"year"`
	Sections    []SectionDTO `json:"sections"`
	GrandTotals []CellDTO    `json:"grandTotals"`
	Cumulative  []CellDTO    `json:"cumulative"`
}

type EditCellDTO struct {
	Year      int    `json:"year"`
	SectionId int64  `json:"sectionId"`
	ItemId    int64  `json:"itemId"`
	Month     int    `json:"month"`
	RawText   string `json:"rawText"`
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

func (h *Handler) EditCell(w http.ResponseWriter, r *http.Request) {
	log.Debug("Editing cashflow cell")
	w.Header().Set("Content-Type", "application/json")

	var dto EditCellDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := h.service.EditCell(r.Context(), dto.Year, dto.SectionId, dto.ItemId, dto.Month, dto.RawText)
	switch {
	case errors.Is(err, ErrSectionNotFound) || errors.Is(err, ErrItemNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, ErrInvalidMonth):
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

func (h *Handler) CreateSection(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating cashflow section")
	w.Header().Set("Content-Type", "application/json")

	var dto SectionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	section, err := h.service.CreateSection(r.Context(), Section{Name: dto.Name, Kind: Kind(dto.Kind), Markup: dto.Markup})
	if errors.Is(err, ErrInvalidKind) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(SectionDTO{
		Id:       section.Id,
		Name:     section.Name,
		Kind:     string(section.Kind),
		Markup:   section.Markup,
		Position: section.Position,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := pathId(r)
	if err != nil {
		http.Error(w, "invalid section id", http.StatusBadRequest)
		return
	}
	var dto SectionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateSection(r.Context(), Section{
		Id:       id,
		Name:     dto.Name,
		Kind:     Kind(dto.Kind),
		Markup:   dto.Markup,
		Position: dto.Position,
	})
	if errors.Is(err, ErrInvalidKind) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !updated {
		http.Error(w, "section not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		http.Error(w, "invalid section id", http.StatusBadRequest)
		return
	}
	deleted, err := h.service.DeleteSection(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "section not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating cashflow item")
	w.Header().Set("Content-Type", "application/json")

	var dto ItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.service.CreateItem(r.Context(), Item{SectionId: dto.SectionId, Name: dto.Name})
	if errors.Is(err, ErrSectionNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ItemDTO{Id: item.Id, SectionId: item.SectionId, Name: item.Name}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := pathId(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	var dto ItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateItem(r.Context(), Item{Id: id, SectionId: dto.SectionId, Name: dto.Name})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !updated {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	deleted, err := h.service.DeleteItem(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathId(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func toGridDTO(data *GridData) GridDTO {
	g := data.Grid
	dto := GridDTO{Year: data.Year}

	for _, section := range data.Sections {
		sectionDTO := SectionDTO{
			Id:       section.Id,
			Name:     section.Name,
			Kind:     string(section.Kind),
			Markup:   section.Markup,
			Position: section.Position,
		}
		for _, item := range section.Items {
			row := grid.RowKey{ParentID: section.Id, ChildID: item.Id}
			sectionDTO.Items = append(sectionDTO.Items, ItemDTO{
				Id:        item.Id,
				SectionId: item.SectionId,
				Name:      item.Name,
				Cells:     rowCells(g, row),
			})
		}
		if len(section.Items) == 0 {
			sectionDTO.Cells = rowCells(g, grid.RowKey{ParentID: section.Id})
		}
		for _, month := range g.Columns() {
			total := g.Total(section.Id, month)
			sectionDTO.Totals = append(sectionDTO.Totals, CellDTO{
				Month:   month,
				Value:   total,
				Display: moneyfmt.FormatForDisplay(total),
			})
			if section.Markup != 0 {
				markup := g.MarkupTotal(section.Id, month)
				sectionDTO.MarkupTotals = append(sectionDTO.MarkupTotals, CellDTO{
					Month:   month,
					Value:   markup,
					Display: moneyfmt.FormatForDisplay(markup),
				})
			}
		}
		dto.Sections = append(dto.Sections, sectionDTO)
	}

	for _, month := range g.Columns() {
		total := g.GrandTotal(month)
		dto.GrandTotals = append(dto.GrandTotals, CellDTO{
			Month:   month,
			Value:   total,
			Display: moneyfmt.FormatForDisplay(total),
		})
		cumulative := g.Cumulative(month)
		dto.Cumulative = append(dto.Cumulative, CellDTO{
			Month:   month,
			Value:   cumulative,
			Display: moneyfmt.FormatForDisplay(cumulative),
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
