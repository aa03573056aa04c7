package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timeslot"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/require"
)

const (
	testAdminID  = "0190a1b2-0000-7000-8000-00000000a001"
	testMemberID = "0190a1b2-0000-7000-8000-00000000b001"
)

type stubAuthService struct {
	register       func(ctx context.Context, req auth.RegisterRequest) (user.User, error)
	login          func(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error)
	loginWithApple func(ctx context.Context, req auth.AppleSignInRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error)
	me             func(ctx context.Context) (user.User, error)
	refresh        func(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error)
	logout         func(ctx context.Context, refreshToken string) error
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (user.User, error) {
	return s.register(ctx, req)
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	return s.login(ctx, req, session)
}

func (s *stubAuthService) LoginWithApple(ctx context.Context, req auth.AppleSignInRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	return s.loginWithApple(ctx, req, session)
}

func (s *stubAuthService) Me(ctx context.Context) (user.User, error) {
	return s.me(ctx)
}

func (s *stubAuthService) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	return s.refresh(ctx, req)
}

func (s *stubAuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.logout(ctx, refreshToken)
}

type stubAttendanceService struct {
	initialize      func(ctx context.Context, timeSlotID string) (attendance.InitializeResponse, error)
	listForTimeSlot func(ctx context.Context, timeSlotID string) ([]attendance.AttendanceResponse, error)
	getByID         func(ctx context.Context, id string) (attendance.AttendanceResponse, error)
	setPresence     func(ctx context.Context, req attendance.SetPresenceRequest) (attendance.AttendanceResponse, error)
	sign            func(ctx context.Context, req attendance.SignRequest) (attendance.AttendanceResponse, error)
	listForUser     func(ctx context.Context, userID string) ([]attendance.AttendanceResponse, error)
}

func (s *stubAttendanceService) InitializeForTimeSlot(ctx context.Context, timeSlotID string) (attendance.InitializeResponse, error) {
	return s.initialize(ctx, timeSlotID)
}

func (s *stubAttendanceService) ListForTimeSlot(ctx context.Context, timeSlotID string) ([]attendance.AttendanceResponse, error) {
	return s.listForTimeSlot(ctx, timeSlotID)
}

func (s *stubAttendanceService) GetByID(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	return s.getByID(ctx, id)
}

func (s *stubAttendanceService) SetPresence(ctx context.Context, req attendance.SetPresenceRequest) (attendance.AttendanceResponse, error) {
	return s.setPresence(ctx, req)
}

func (s *stubAttendanceService) Sign(ctx context.Context, req attendance.SignRequest) (attendance.AttendanceResponse, error) {
	return s.sign(ctx, req)
}

func (s *stubAttendanceService) ListForUser(ctx context.Context, userID string) ([]attendance.AttendanceResponse, error) {
	return s.listForUser(ctx, userID)
}

type stubFileService struct {
	upload func(ctx context.Context, ownerID string, r io.Reader, filename string, size int64) (file.FileResponse, error)
	get    func(ctx context.Context, id string) (file.FileResponse, error)
}

func (s *stubFileService) UploadSignature(ctx context.Context, ownerID string, r io.Reader, filename string, size int64) (file.FileResponse, error) {
	return s.upload(ctx, ownerID, r, filename, size)
}

func (s *stubFileService) GetFile(ctx context.Context, id string) (file.FileResponse, error) {
	return s.get(ctx, id)
}

type stubTimeSlotService struct {
	timeslot.TimeSlotService
	list func(ctx context.Context, filter timeslot.TimeSlotFilter) ([]timeslot.TimeSlotResponse, error)
}

func (s *stubTimeSlotService) ListTimeSlots(ctx context.Context, filter timeslot.TimeSlotFilter) ([]timeslot.TimeSlotResponse, error) {
	return s.list(ctx, filter)
}

type testServer struct {
	t          *testing.T
	jwtService jwt.Service
	handler    http.Handler
}

func newTestServer(t *testing.T, authSvc auth.AuthService, attendanceSvc attendance.AttendanceService, fileSvc file.FileService, timeSlotSvc timeslot.TimeSlotService, store storage.FileStorage) *testServer {
	t.Helper()
	jwtService, err := jwt.NewJWTService("handler-test-secret", "1h", "24h")
	require.NoError(t, err)

	if authSvc == nil {
		authSvc = &stubAuthService{}
	}
	if attendanceSvc == nil {
		attendanceSvc = &stubAttendanceService{}
	}
	if fileSvc == nil {
		fileSvc = &stubFileService{}
	}
	if timeSlotSvc == nil {
		timeSlotSvc = &stubTimeSlotService{}
	}
	if store == nil {
		local, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/uploads")
		require.NoError(t, err)
		store = local
	}

	router := NewRouter(RouterConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		Env:            "test",
		Version:        "test",
	}, jwtService, Handlers{
		Auth:       NewAuthHandler(jwtService, authSvc),
		Attendance: NewAttendanceHandler(attendanceSvc),
		File:       NewFileHandler(fileSvc, store),
		TimeSlot:   NewTimeSlotHandler(timeSlotSvc),
	})

	return &testServer{t: t, jwtService: jwtService, handler: router}
}

func (s *testServer) token(userID string, role user.Role) string {
	s.t.Helper()
	token, _, err := s.jwtService.GenerateAccessToken(userID, userID+"@example.com", role)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, target string, body interface{}, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total int `json:"total"`
	} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}
