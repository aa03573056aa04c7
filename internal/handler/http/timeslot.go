package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timeslot"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type TimeSlotHandler interface {
	CreateGroup(w http.ResponseWriter, r *http.Request)
	GetGroup(w http.ResponseWriter, r *http.Request)
	AddGroupMembers(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type timeSlotHandlerImpl struct {
	timeSlotService timeslot.TimeSlotService
}

func NewTimeSlotHandler(timeSlotService timeslot.TimeSlotService) TimeSlotHandler {
	return &timeSlotHandlerImpl{
		timeSlotService: timeSlotService,
	}
}

// CreateGroup implements TimeSlotHandler.
func (h *timeSlotHandlerImpl) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req timeslot.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateGroup decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.timeSlotService.CreateGroup(r.Context(), req)
	if err != nil {
		slog.Error("CreateGroup service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Group created successfully", result)
}

// GetGroup implements TimeSlotHandler.
func (h *timeSlotHandlerImpl) GetGroup(w http.ResponseWriter, r *http.Request) {
	result, err := h.timeSlotService.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("GetGroup service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// AddGroupMembers implements TimeSlotHandler.
func (h *timeSlotHandlerImpl) AddGroupMembers(w http.ResponseWriter, r *http.Request) {
	var req timeslot.AddGroupMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AddGroupMembers decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.GroupID = chi.URLParam(r, "id")

	result, err := h.timeSlotService.AddGroupMembers(r.Context(), req)
	if err != nil {
		slog.Error("AddGroupMembers service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Members added successfully", result)
}

// Create implements TimeSlotHandler.
func (h *timeSlotHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req timeslot.CreateTimeSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateTimeSlot decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.timeSlotService.CreateTimeSlot(r.Context(), req)
	if err != nil {
		slog.Error("CreateTimeSlot service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Time slot created successfully", result)
}

// Get implements TimeSlotHandler.
func (h *timeSlotHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.timeSlotService.GetTimeSlot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("GetTimeSlot service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// List implements TimeSlotHandler.
func (h *timeSlotHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter timeslot.TimeSlotFilter
	if groupID := r.URL.Query().Get("group_id"); groupID != "" {
		filter.GroupID = &groupID
	}

	list, err := h.timeSlotService.ListTimeSlots(r.Context(), filter)
	if err != nil {
		slog.Error("ListTimeSlots service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.List(w, list, len(list))
}
