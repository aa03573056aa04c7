package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	InitializeForTimeSlot(w http.ResponseWriter, r *http.Request)
	ListForTimeSlot(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	SetPresence(w http.ResponseWriter, r *http.Request)
	Sign(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	ListForUser(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// InitializeForTimeSlot implements AttendanceHandler.
func (h *attendanceHandlerImpl) InitializeForTimeSlot(w http.ResponseWriter, r *http.Request) {
	timeSlotID := chi.URLParam(r, "id")

	result, err := h.attendanceService.InitializeForTimeSlot(r.Context(), timeSlotID)
	if err != nil {
		slog.Error("InitializeForTimeSlot service error", "error", err, "time_slot_id", timeSlotID)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendances initialized successfully", result)
}

// ListForTimeSlot implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListForTimeSlot(w http.ResponseWriter, r *http.Request) {
	timeSlotID := chi.URLParam(r, "id")

	list, err := h.attendanceService.ListForTimeSlot(r.Context(), timeSlotID)
	if err != nil {
		slog.Error("ListForTimeSlot service error", "error", err, "time_slot_id", timeSlotID)
		response.HandleError(w, err)
		return
	}

	response.List(w, list, len(list))
}

// Get implements AttendanceHandler. Members only see their own attendances.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	current, err := callerFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetByID(r.Context(), id)
	if err != nil {
		slog.Error("GetAttendance service error", "error", err, "id", id)
		response.HandleError(w, err)
		return
	}
	if !current.canAccess(result.UserID) {
		response.HandleError(w, attendance.ErrNotAttendanceOwner)
		return
	}

	response.Success(w, result)
}

// SetPresence implements AttendanceHandler.
func (h *attendanceHandlerImpl) SetPresence(w http.ResponseWriter, r *http.Request) {
	var req attendance.SetPresenceRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SetPresence decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.AttendanceID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		slog.Error("SetPresence validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.SetPresence(r.Context(), req)
	if err != nil {
		slog.Error("SetPresence service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Presence updated successfully", result)
}

// Sign implements AttendanceHandler.
func (h *attendanceHandlerImpl) Sign(w http.ResponseWriter, r *http.Request) {
	var req attendance.SignRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Sign decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	userID, err := jwt.UserIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}
	req.AttendanceID = chi.URLParam(r, "id")
	req.UserID = userID

	if err := req.Validate(); err != nil {
		slog.Error("Sign validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Sign(r.Context(), req)
	if err != nil {
		slog.Error("Sign service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance signed successfully", result)
}

// ListMine implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := jwt.UserIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}
	h.listForUser(w, r, userID)
}

// ListForUser implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListForUser(w http.ResponseWriter, r *http.Request) {
	h.listForUser(w, r, chi.URLParam(r, "id"))
}

func (h *attendanceHandlerImpl) listForUser(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := h.attendanceService.ListForUser(r.Context(), userID)
	if err != nil {
		slog.Error("ListForUser service error", "error", err, "user_id", userID)
		response.HandleError(w, err)
		return
	}

	response.List(w, list, len(list))
}
