package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"gympoint/internal/repository"
	"gympoint/internal/service"
)

type AdminHandler struct {
	Reservations *service.ReservationService
	Occupancy    *service.OccupancyService
	Directory    *repository.DirectoryRepository
}

func NewAdminHandler(reservations *service.ReservationService, occupancy *service.OccupancyService, directory *repository.DirectoryRepository) *AdminHandler {
	return &AdminHandler{
		Reservations: reservations,
		Occupancy:    occupancy,
		Directory:    directory,
	}
}

func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	resourceID, _ := strconv.Atoi(r.URL.Query().Get("resource_id"))
	status := r.URL.Query().Get("status")
	date := r.URL.Query().Get("date")

	list, err := h.Reservations.List(r.Context(), resourceID, status, date)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *AdminHandler) UpdateGymCapacity(w http.ResponseWriter, r *http.Request) {
	gymID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid gym ID", http.StatusBadRequest)
		return
	}
	var req struct {
		MaxCapacity int `json:"max_capacity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.MaxCapacity < 0 {
		http.Error(w, "Capacity cannot be negative", http.StatusUnprocessableEntity)
		return
	}
	if err := h.Directory.UpdateGymCapacity(r.Context(), gymID, req.MaxCapacity); err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Gym capacity updated"})
}

func (h *AdminHandler) OccupancyReport(w http.ResponseWriter, r *http.Request) {
	gymID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid gym ID", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, "Invalid start date", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, "Invalid end date", http.StatusBadRequest)
		return
	}

	report, err := h.Occupancy.Report(r.Context(), gymID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
