package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/attendance-console/internal/application"
	"github.com/example/attendance-console/internal/testfixtures"
)

func withPrincipal(principal application.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

type authServiceStub struct {
	result       application.AuthenticateResult
	authErr      error
	revokeErr    error
	revokedToken string
}

func (s *authServiceStub) Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	if s.authErr != nil {
		return application.AuthenticateResult{}, s.authErr
	}
	return s.result, nil
}

func (s *authServiceStub) RevokeSession(ctx context.Context, token string) error {
	if s.revokeErr != nil {
		return s.revokeErr
	}
	s.revokedToken = token
	return nil
}

func TestAuthHandlers(t *testing.T) {
	t.Parallel()

	expiresAt := time.Date(2024, 3, 5, 7, 0, 0, 0, time.UTC)

	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()

		service := &authServiceStub{result: application.AuthenticateResult{
			User:    application.User{ID: "user-1", Username: "maria.lopez", FullName: "Maria Lopez", Role: application.RoleEmployee},
			Session: application.Session{Token: "token-1", ExpiresAt: expiresAt},
		}}
		handler := NewAuthHandler(service, nil)

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"Maria.Lopez","password":"secreto"}`))
		recorder := httptest.NewRecorder()
		handler.Login(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", recorder.Code)
		}
		if got := recorder.Header().Get("X-Session-Token"); got != "token-1" {
			t.Fatalf("expected session token header, got %q", got)
		}

		cookies := recorder.Result().Cookies()
		var sessionCookie *http.Cookie
		for _, cookie := range cookies {
			if cookie.Name == "session_token" {
				sessionCookie = cookie
			}
		}
		if sessionCookie == nil || sessionCookie.Value != "token-1" {
			t.Fatalf("expected session cookie with token, got %+v", sessionCookie)
		}
		if !sessionCookie.HttpOnly {
			t.Fatal("expected HttpOnly session cookie")
		}

		var body loginResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Token != "token-1" {
			t.Fatalf("expected token in body, got %q", body.Token)
		}
		if body.User.Username != "maria.lopez" {
			t.Fatalf("expected user in body, got %+v", body.User)
		}
	})

	t.Run("login rejects invalid credentials with 401", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&authServiceStub{authErr: application.ErrInvalidCredentials}, nil)

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"maria","password":"wrong"}`))
		recorder := httptest.NewRecorder()
		handler.Login(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", recorder.Code)
		}
		if body := decodeError(t, recorder); body.ErrorCode != "AUTH_INVALID_CREDENTIALS" {
			t.Fatalf("expected AUTH_INVALID_CREDENTIALS, got %q", body.ErrorCode)
		}
	})

	t.Run("login rejects disabled accounts with 403", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&authServiceStub{authErr: application.ErrAccountDisabled}, nil)

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"inactivo","password":"secreto"}`))
		recorder := httptest.NewRecorder()
		handler.Login(recorder, req)

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", recorder.Code)
		}
		if body := decodeError(t, recorder); body.ErrorCode != "AUTH_ACCOUNT_DISABLED" {
			t.Fatalf("expected AUTH_ACCOUNT_DISABLED, got %q", body.ErrorCode)
		}
	})

	t.Run("login rejects malformed bodies with 400", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&authServiceStub{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("{"))
		recorder := httptest.NewRecorder()
		handler.Login(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", recorder.Code)
		}
	})

	t.Run("logout revokes the session and clears the cookie", func(t *testing.T) {
		t.Parallel()

		service := &authServiceStub{}
		handler := NewAuthHandler(service, nil)

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.Header.Set("Authorization", "Bearer token-1")
		recorder := httptest.NewRecorder()
		handler.Logout(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", recorder.Code)
		}
		if service.revokedToken != "token-1" {
			t.Fatalf("expected token-1 revoked, got %q", service.revokedToken)
		}

		var cleared *http.Cookie
		for _, cookie := range recorder.Result().Cookies() {
			if cookie.Name == "session_token" {
				cleared = cookie
			}
		}
		if cleared == nil || cleared.Value != "" || cleared.MaxAge != -1 {
			t.Fatalf("expected cleared session cookie, got %+v", cleared)
		}
	})

	t.Run("logout without a token returns 401", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&authServiceStub{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		recorder := httptest.NewRecorder()
		handler.Logout(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", recorder.Code)
		}
	})
}

type userServiceStub struct {
	user      application.User
	users     []application.User
	createErr error
	updateErr error
	deleteErr error
	getErr    error
	listErr   error
	deletedID string
}

func (s *userServiceStub) CreateUser(ctx context.Context, params application.CreateUserParams) (application.User, error) {
	if s.createErr != nil {
		return application.User{}, s.createErr
	}
	return s.user, nil
}

func (s *userServiceStub) UpdateUser(ctx context.Context, params application.UpdateUserParams) (application.User, error) {
	if s.updateErr != nil {
		return application.User{}, s.updateErr
	}
	return s.user, nil
}

func (s *userServiceStub) DeleteUser(ctx context.Context, principal application.Principal, userID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedID = userID
	return nil
}

func (s *userServiceStub) GetUser(ctx context.Context, principal application.Principal, userID string) (application.User, error) {
	if s.getErr != nil {
		return application.User{}, s.getErr
	}
	return s.user, nil
}

func (s *userServiceStub) ListUsers(ctx context.Context, principal application.Principal) ([]application.User, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.users, nil
}

func TestUserHandlers(t *testing.T) {
	t.Parallel()

	admin := application.Principal{UserID: application.RootUserID, IsAdmin: true}

	newRouter := func(service *userServiceStub, principal application.Principal) http.Handler {
		return NewRouter(RouterConfig{
			Users:      NewUserHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})
	}

	t.Run("create returns the stored user", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{user: application.User{ID: "user-1", Username: "ana.garcia", FullName: "Ana Garcia", Role: application.RoleEmployee, ShiftType: application.ShiftMorning, IsActive: true}}
		router := newRouter(service, admin)

		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"username":"ana.garcia","full_name":"Ana Garcia","password":"secreto","shift_type":"morning"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", recorder.Code)
		}
		var body userResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.User.Username != "ana.garcia" || body.User.ShiftType != "MORNING" {
			t.Fatalf("unexpected user payload: %+v", body.User)
		}
	})

	t.Run("forbidden operations map to 403", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{listErr: application.ErrUnauthorized}
		router := newRouter(service, application.Principal{UserID: "user-2"})

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", recorder.Code)
		}
		if body := decodeError(t, recorder); body.ErrorCode != "AUTH_FORBIDDEN" {
			t.Fatalf("expected AUTH_FORBIDDEN, got %q", body.ErrorCode)
		}
	})

	t.Run("validation failures return localized field errors", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{createErr: &application.ValidationError{FieldErrors: map[string]string{
			"username": "username is required",
		}}}
		router := newRouter(service, admin)

		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d", recorder.Code)
		}
		body := decodeError(t, recorder)
		if body.Errors["username"] != "El nombre de usuario es obligatorio." {
			t.Fatalf("expected localized username error, got %q", body.Errors["username"])
		}
	})

	t.Run("duplicate usernames map to 409", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{createErr: application.ErrAlreadyExists}
		router := newRouter(service, admin)

		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"username":"ana.garcia"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", recorder.Code)
		}
		if body := decodeError(t, recorder); body.ErrorCode != "USER_ALREADY_EXISTS" {
			t.Fatalf("expected USER_ALREADY_EXISTS, got %q", body.ErrorCode)
		}
	})

	t.Run("root user deletion maps to 403", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{deleteErr: application.ErrRootUserProtected}
		router := newRouter(service, admin)

		req := httptest.NewRequest(http.MethodDelete, "/users/"+application.RootUserID, nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", recorder.Code)
		}
		if body := decodeError(t, recorder); body.ErrorCode != "USER_ROOT_PROTECTED" {
			t.Fatalf("expected USER_ROOT_PROTECTED, got %q", body.ErrorCode)
		}
	})

	t.Run("delete resolves the path identifier", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{}
		router := newRouter(service, admin)

		req := httptest.NewRequest(http.MethodDelete, "/users/user-9", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", recorder.Code)
		}
		if service.deletedID != "user-9" {
			t.Fatalf("expected user-9 deleted, got %q", service.deletedID)
		}
	})
}

type attendanceServiceStub struct {
	clockInResult application.ClockInResult
	clockInErr    error
	mutateErr     error
	lastMutation  string
	lastRecordID  string
	todayRecord   application.AttendanceRecord
	todayFound    bool
	todayErr      error
	stats         application.WeeklyStats
	statsErr      error
}

func (s *attendanceServiceStub) ClockIn(ctx context.Context, user application.User) (application.ClockInResult, error) {
	if s.clockInErr != nil {
		return application.ClockInResult{}, s.clockInErr
	}
	return s.clockInResult, nil
}

func (s *attendanceServiceStub) MealStart(ctx context.Context, principal application.Principal, recordID string) error {
	s.lastMutation, s.lastRecordID = "meal_start", recordID
	return s.mutateErr
}

func (s *attendanceServiceStub) MealEnd(ctx context.Context, principal application.Principal, recordID string) error {
	s.lastMutation, s.lastRecordID = "meal_end", recordID
	return s.mutateErr
}

func (s *attendanceServiceStub) ClockOut(ctx context.Context, principal application.Principal, recordID string) error {
	s.lastMutation, s.lastRecordID = "clock_out", recordID
	return s.mutateErr
}

func (s *attendanceServiceStub) TodayRecord(ctx context.Context, userID string) (application.AttendanceRecord, bool, error) {
	return s.todayRecord, s.todayFound, s.todayErr
}

func (s *attendanceServiceStub) WeeklyStats(ctx context.Context, userID string) (application.WeeklyStats, error) {
	if s.statsErr != nil {
		return application.WeeklyStats{}, s.statsErr
	}
	return s.stats, nil
}

type userDirectoryStub struct {
	user application.User
	err  error
}

func (s *userDirectoryStub) GetUser(ctx context.Context, principal application.Principal, userID string) (application.User, error) {
	if s.err != nil {
		return application.User{}, s.err
	}
	return s.user, nil
}

type invalidatorStub struct {
	calls int
}

func (s *invalidatorStub) InvalidateReports() {
	s.calls++
}

func TestAttendanceHandlers(t *testing.T) {
	t.Parallel()

	employee := application.Principal{UserID: "user-1"}

	newRouter := func(service *attendanceServiceStub, directory *userDirectoryStub, invalidator *invalidatorStub) http.Handler {
		var reports reportInvalidator
		if invalidator != nil {
			reports = invalidator
		}
		return NewRouter(RouterConfig{
			Attendance: NewAttendanceHandler(service, directory, reports, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(employee)},
		})
	}

	t.Run("clock-in returns the record and confirmation message", func(t *testing.T) {
		t.Parallel()

		record := testfixtures.NewRecordFixture(
			testfixtures.WithRecordID("rec-1"),
			testfixtures.WithRecordUser("user-1"),
		).Application()
		service := &attendanceServiceStub{clockInResult: application.ClockInResult{
			Record:  record,
			Message: "Entrada registrada a las 07:00",
		}}
		invalidator := &invalidatorStub{}
		directory := &userDirectoryStub{user: testfixtures.NewUserFixture(testfixtures.WithUserID("user-1")).Application()}
		router := newRouter(service, directory, invalidator)

		req := httptest.NewRequest(http.MethodPost, "/attendance/clock-in", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", recorder.Code)
		}
		var body clockInResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Message != "Entrada registrada a las 07:00" {
			t.Fatalf("unexpected message %q", body.Message)
		}
		if body.Record.ID != "rec-1" || body.Record.ClockIn == nil {
			t.Fatalf("unexpected record payload: %+v", body.Record)
		}
		if invalidator.calls != 1 {
			t.Fatalf("expected one report invalidation, got %d", invalidator.calls)
		}
	})

	t.Run("duplicate clock-in maps to 409", func(t *testing.T) {
		t.Parallel()

		service := &attendanceServiceStub{clockInErr: application.ErrAlreadyClockedIn}
		router := newRouter(service, &userDirectoryStub{user: application.User{ID: "user-1"}}, nil)

		req := httptest.NewRequest(http.MethodPost, "/attendance/clock-in", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", recorder.Code)
		}
		if body := decodeError(t, recorder); body.ErrorCode != "ATTENDANCE_ALREADY_CLOCKED_IN" {
			t.Fatalf("expected ATTENDANCE_ALREADY_CLOCKED_IN, got %q", body.ErrorCode)
		}
	})

	t.Run("punch routes dispatch by path segment", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			path     string
			expected string
		}{
			{path: "/attendance/rec-1/meal-start", expected: "meal_start"},
			{path: "/attendance/rec-1/meal-end", expected: "meal_end"},
			{path: "/attendance/rec-1/clock-out", expected: "clock_out"},
		}

		for _, tc := range tests {
			tc := tc
			t.Run(tc.expected, func(t *testing.T) {
				t.Parallel()

				service := &attendanceServiceStub{}
				router := newRouter(service, &userDirectoryStub{}, nil)

				req := httptest.NewRequest(http.MethodPost, tc.path, nil)
				recorder := httptest.NewRecorder()
				router.ServeHTTP(recorder, req)

				if recorder.Code != http.StatusNoContent {
					t.Fatalf("expected status 204, got %d", recorder.Code)
				}
				if service.lastMutation != tc.expected || service.lastRecordID != "rec-1" {
					t.Fatalf("expected %s on rec-1, got %s on %s", tc.expected, service.lastMutation, service.lastRecordID)
				}
			})
		}
	})

	t.Run("clock-out before clock-in maps to 409", func(t *testing.T) {
		t.Parallel()

		service := &attendanceServiceStub{mutateErr: application.ErrNotClockedIn}
		router := newRouter(service, &userDirectoryStub{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/attendance/rec-1/clock-out", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", recorder.Code)
		}
		if body := decodeError(t, recorder); body.ErrorCode != "ATTENDANCE_NOT_CLOCKED_IN" {
			t.Fatalf("expected ATTENDANCE_NOT_CLOCKED_IN, got %q", body.ErrorCode)
		}
	})

	t.Run("foreign record punches map to 403", func(t *testing.T) {
		t.Parallel()

		service := &attendanceServiceStub{mutateErr: application.ErrUnauthorized}
		router := newRouter(service, &userDirectoryStub{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/attendance/rec-2/meal-start", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", recorder.Code)
		}
	})

	t.Run("today without a record offers only clock-in", func(t *testing.T) {
		t.Parallel()

		router := newRouter(&attendanceServiceStub{}, &userDirectoryStub{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/attendance/today", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
		var body todayResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Record != nil {
			t.Fatalf("expected no record, got %+v", body.Record)
		}
		if body.Status != string(application.StatusOut) {
			t.Fatalf("expected OUT status, got %q", body.Status)
		}
		if len(body.Actions) != 1 || body.Actions[0] != string(application.ActionClockIn) {
			t.Fatalf("expected clock_in action, got %v", body.Actions)
		}
	})

	t.Run("today with an open record reports working status", func(t *testing.T) {
		t.Parallel()

		service := &attendanceServiceStub{
			todayRecord: testfixtures.NewRecordFixture(testfixtures.WithRecordUser("user-1")).Application(),
			todayFound:  true,
		}
		router := newRouter(service, &userDirectoryStub{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/attendance/today", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		var body todayResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Status != string(application.StatusWorking) {
			t.Fatalf("expected WORKING status, got %q", body.Status)
		}
		if len(body.Actions) != 2 {
			t.Fatalf("expected meal_start and clock_out actions, got %v", body.Actions)
		}
	})

	t.Run("stats returns the weekly aggregates", func(t *testing.T) {
		t.Parallel()

		service := &attendanceServiceStub{stats: application.WeeklyStats{Hours: "15.5", Days: 2, Lates: 1}}
		router := newRouter(service, &userDirectoryStub{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/attendance/stats", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
		var body statsResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Hours != "15.5" || body.Days != 2 || body.Lates != 1 {
			t.Fatalf("unexpected stats payload: %+v", body)
		}
	})
}

type rosterServiceStub struct {
	roster     application.WeeklyRoster
	rosters    []application.WeeklyRoster
	getErr     error
	listErr    error
	assignErr  error
	lastParams application.AssignShiftParams
}

func (s *rosterServiceStub) GetRoster(ctx context.Context, principal application.Principal, userID, weekStart string) (application.WeeklyRoster, error) {
	if s.getErr != nil {
		return application.WeeklyRoster{}, s.getErr
	}
	return s.roster, nil
}

func (s *rosterServiceStub) ListRostersForWeek(ctx context.Context, principal application.Principal, weekStart string) ([]application.WeeklyRoster, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.rosters, nil
}

func (s *rosterServiceStub) AssignShift(ctx context.Context, principal application.Principal, params application.AssignShiftParams) (application.WeeklyRoster, error) {
	if s.assignErr != nil {
		return application.WeeklyRoster{}, s.assignErr
	}
	s.lastParams = params
	return s.roster, nil
}

func TestRosterHandlers(t *testing.T) {
	t.Parallel()

	admin := application.Principal{UserID: application.RootUserID, IsAdmin: true}

	newRouter := func(service *rosterServiceStub, principal application.Principal) http.Handler {
		return NewRouter(RouterConfig{
			Rosters:    NewRosterHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})
	}

	t.Run("assign resolves user and day from the path", func(t *testing.T) {
		t.Parallel()

		service := &rosterServiceStub{roster: application.WeeklyRoster{
			UserID:    "user-1",
			WeekStart: "2024-03-03",
			Assignments: map[int]application.RosterAssignment{
				3: {Shift: application.ShiftMorning, Area: "Cocina"},
			},
		}}
		router := newRouter(service, admin)

		req := httptest.NewRequest(http.MethodPut, "/rosters/user-1/3", strings.NewReader(`{"week_start":"2024-03-03","shift":"morning","area":"Cocina"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
		if service.lastParams.UserID != "user-1" || service.lastParams.Day != 3 {
			t.Fatalf("unexpected assignment params: %+v", service.lastParams)
		}
		if service.lastParams.Shift != application.ShiftMorning {
			t.Fatalf("expected MORNING shift, got %q", service.lastParams.Shift)
		}

		var body rosterResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Roster.Assignments[3].Area != "Cocina" {
			t.Fatalf("unexpected roster payload: %+v", body.Roster)
		}
	})

	t.Run("non-numeric day segments return 400", func(t *testing.T) {
		t.Parallel()

		router := newRouter(&rosterServiceStub{}, admin)

		req := httptest.NewRequest(http.MethodPut, "/rosters/user-1/miercoles", strings.NewReader(`{}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", recorder.Code)
		}
	})

	t.Run("week listing requires administrators", func(t *testing.T) {
		t.Parallel()

		service := &rosterServiceStub{listErr: application.ErrUnauthorized}
		router := newRouter(service, application.Principal{UserID: "user-2"})

		req := httptest.NewRequest(http.MethodGet, "/rosters?week=2024-03-06", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", recorder.Code)
		}
	})

	t.Run("employees fetch their own roster", func(t *testing.T) {
		t.Parallel()

		service := &rosterServiceStub{roster: application.WeeklyRoster{UserID: "user-2", WeekStart: "2024-03-03", Assignments: map[int]application.RosterAssignment{}}}
		router := newRouter(service, application.Principal{UserID: "user-2"})

		req := httptest.NewRequest(http.MethodGet, "/rosters/user-2?week=2024-03-06", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
		var body rosterResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Roster.WeekStart != "2024-03-03" {
			t.Fatalf("unexpected week start %q", body.Roster.WeekStart)
		}
	})

	t.Run("malformed week parameters return localized validation errors", func(t *testing.T) {
		t.Parallel()

		service := &rosterServiceStub{listErr: &application.ValidationError{FieldErrors: map[string]string{
			"week_start": "week_start must use the YYYY-MM-DD format",
		}}}
		router := newRouter(service, admin)

		req := httptest.NewRequest(http.MethodGet, "/rosters?week=pronto", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d", recorder.Code)
		}
		body := decodeError(t, recorder)
		if body.Errors["week_start"] != "La semana debe tener el formato YYYY-MM-DD." {
			t.Fatalf("expected localized week error, got %q", body.Errors["week_start"])
		}
	})
}

type reportServiceStub struct {
	rows []application.ReportRow
	err  error
}

func (s *reportServiceStub) PunctualityReport(ctx context.Context, principal application.Principal) ([]application.ReportRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

type auditServiceStub struct {
	entries   []application.AuditEntry
	err       error
	lastLimit int
}

func (s *auditServiceStub) ListEntries(ctx context.Context, principal application.Principal, limit int) ([]application.AuditEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastLimit = limit
	return s.entries, nil
}

func TestReportHandlers(t *testing.T) {
	t.Parallel()

	admin := application.Principal{UserID: application.RootUserID, IsAdmin: true}
	createdAt := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

	newRouter := func(reports *reportServiceStub, audit *auditServiceStub, principal application.Principal) http.Handler {
		return NewRouter(RouterConfig{
			Reports:    NewReportHandler(reports, audit, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})
	}

	t.Run("punctuality report serializes rows", func(t *testing.T) {
		t.Parallel()

		reports := &reportServiceStub{rows: []application.ReportRow{{
			User:            application.User{ID: "user-1", Username: "ana.garcia", FullName: "Ana Garcia"},
			TotalHours:      "80.0",
			TotalDays:       10,
			TotalLates:      3,
			PunctualityRate: 70,
		}}}
		router := newRouter(reports, &auditServiceStub{}, admin)

		req := httptest.NewRequest(http.MethodGet, "/reports", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
		var body reportResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if len(body.Rows) != 1 || body.Rows[0].PunctualityRate != 70 {
			t.Fatalf("unexpected report payload: %+v", body.Rows)
		}
	})

	t.Run("reports require administrators", func(t *testing.T) {
		t.Parallel()

		router := newRouter(&reportServiceStub{err: application.ErrUnauthorized}, &auditServiceStub{}, application.Principal{UserID: "user-2"})

		req := httptest.NewRequest(http.MethodGet, "/reports", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", recorder.Code)
		}
	})

	t.Run("audit trail honours the limit parameter", func(t *testing.T) {
		t.Parallel()

		audit := &auditServiceStub{entries: []application.AuditEntry{{
			ID:        "audit-1",
			ActorID:   application.RootUserID,
			Action:    "user.create",
			CreatedAt: createdAt,
		}}}
		router := newRouter(&reportServiceStub{}, audit, admin)

		req := httptest.NewRequest(http.MethodGet, "/audit?limit=25", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
		if audit.lastLimit != 25 {
			t.Fatalf("expected limit 25, got %d", audit.lastLimit)
		}
		var body auditResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if len(body.Entries) != 1 || body.Entries[0].Action != "user.create" {
			t.Fatalf("unexpected audit payload: %+v", body.Entries)
		}
	})

	t.Run("invalid audit limits return 400", func(t *testing.T) {
		t.Parallel()

		router := newRouter(&reportServiceStub{}, &auditServiceStub{}, admin)

		req := httptest.NewRequest(http.MethodGet, "/audit?limit=muchos", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", recorder.Code)
		}
	})
}
