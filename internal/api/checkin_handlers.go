package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gympoint/internal/service"
)

type CheckInHandler struct {
	Service *service.CheckInService
}

func NewCheckInHandler(svc *service.CheckInService) *CheckInHandler {
	return &CheckInHandler{Service: svc}
}

func (h *CheckInHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	gymID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid gym ID", http.StatusBadRequest)
		return
	}
	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	rec, err := h.Service.CheckIn(r.Context(), req.UserID, gymID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CheckInResponse{
		CheckInID: rec.ID,
		EntryTime: rec.EntryTime,
	})
}

func (h *CheckInHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	gymID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid gym ID", http.StatusBadRequest)
		return
	}
	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.Service.CheckOut(r.Context(), req.UserID, gymID); err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Checked out"})
}
