package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// UserRepository captures the persistence operations needed by the user service.
type UserRepository interface {
	CreateUser(ctx context.Context, user User, passwordHash string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	UpdateUser(ctx context.Context, user User, passwordHash string) (User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]User, error)
}

// AuditRecorder receives a trail entry for each administrative mutation.
type AuditRecorder interface {
	RecordAction(ctx context.Context, actorID, action, details string) error
}

// UserService orchestrates validation, authorization, and persistence for
// staff accounts. The root administrator is protected: it can never be
// deleted or deactivated.
type UserService struct {
	users       UserRepository
	audit       AuditRecorder
	hasher      func(password string) (string, error)
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService wires dependencies for the user service. audit may be nil.
func NewUserService(users UserRepository, audit AuditRecorder, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, audit, idGenerator, now, nil)
}

// NewUserServiceWithLogger constructs a UserService with a specified logger.
func NewUserServiceWithLogger(users UserRepository, audit AuditRecorder, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:       users,
		audit:       audit,
		hasher:      func(password string) (string, error) { return CreatePasswordHash(password, DefaultArgon2idParams) },
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser validates input and persists a new employee for administrators.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if !params.Principal.IsAdmin {
		return User{}, ErrUnauthorized
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	normalized := normalizeUserInput(params.Input)
	vErr := validateUserInput(normalized, true)
	if vErr.HasErrors() {
		return User{}, vErr
	}

	hash, err := s.hasher(normalized.Password)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	user := User{
		ID:            s.idGenerator(),
		Username:      normalized.Username,
		FullName:      normalized.FullName,
		Role:          RoleEmployee,
		ShiftType:     normalized.ShiftType,
		Areas:         normalized.Areas,
		DaysOff:       normalized.DaysOff,
		IsActive:      normalized.IsActive,
		PrimaryRole:   normalized.PrimaryRole,
		SecondaryRole: normalized.SecondaryRole,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	logger := s.loggerWith(ctx, "CreateUser", "principal_id", params.Principal.UserID, "username", user.Username)

	persisted, err := s.users.CreateUser(ctx, user, hash)
	if err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
		return User{}, err
	}

	logger.With("user_id", persisted.ID).InfoContext(ctx, "user created")
	s.recordAudit(ctx, params.Principal, "user.create", fmt.Sprintf("created user %s (%s)", persisted.Username, persisted.ID))
	return persisted, nil
}

// UpdateUser validates input and updates an existing user for administrators.
// An empty password keeps the stored credential.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if !params.Principal.IsAdmin {
		return User{}, ErrUnauthorized
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	existing, err := s.users.GetUser(ctx, params.UserID)
	if err != nil {
		return User{}, mapRepoError(err)
	}

	normalized := normalizeUserInput(params.Input)
	vErr := validateUserInput(normalized, false)
	if vErr.HasErrors() {
		return User{}, vErr
	}

	if existing.ID == RootUserID && !normalized.IsActive {
		return User{}, ErrRootUserProtected
	}

	hash := ""
	if normalized.Password != "" {
		hash, err = s.hasher(normalized.Password)
		if err != nil {
			return User{}, err
		}
	}

	updated := existing
	updated.Username = normalized.Username
	updated.FullName = normalized.FullName
	updated.ShiftType = normalized.ShiftType
	updated.Areas = normalized.Areas
	updated.DaysOff = normalized.DaysOff
	updated.IsActive = normalized.IsActive
	updated.PrimaryRole = normalized.PrimaryRole
	updated.SecondaryRole = normalized.SecondaryRole
	updated.UpdatedAt = s.now()

	logger := s.loggerWith(ctx, "UpdateUser", "principal_id", params.Principal.UserID, "user_id", params.UserID)

	persisted, err := s.users.UpdateUser(ctx, updated, hash)
	if err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to update user", "error", err, "error_kind", ErrorKind(err))
		return User{}, err
	}

	logger.InfoContext(ctx, "user updated")
	s.recordAudit(ctx, params.Principal, "user.update", fmt.Sprintf("updated user %s (%s)", persisted.Username, persisted.ID))
	return persisted, nil
}

// SetUserActive toggles the soft-disable flag. Deactivating the root
// administrator is rejected and leaves the account untouched.
func (s *UserService) SetUserActive(ctx context.Context, principal Principal, userID string, active bool) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin {
		return User{}, ErrUnauthorized
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	if userID == RootUserID && !active {
		return User{}, ErrRootUserProtected
	}

	existing, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return User{}, mapRepoError(err)
	}

	existing.IsActive = active
	existing.UpdatedAt = s.now()

	persisted, err := s.users.UpdateUser(ctx, existing, "")
	if err != nil {
		return User{}, mapRepoError(err)
	}

	state := "deactivated"
	if active {
		state = "activated"
	}
	s.recordAudit(ctx, principal, "user.set_active", fmt.Sprintf("%s user %s (%s)", state, persisted.Username, persisted.ID))
	return persisted, nil
}

// DeleteUser removes a user when requested by an administrator. The root
// administrator is never deleted.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	if userID == RootUserID {
		return ErrRootUserProtected
	}

	logger := s.loggerWith(ctx, "DeleteUser", "principal_id", principal.UserID, "user_id", userID)

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "user deleted")
	s.recordAudit(ctx, principal, "user.delete", fmt.Sprintf("deleted user %s", userID))
	return nil
}

// GetUser returns a single user. Administrators can fetch anyone; other
// principals only themselves.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin && principal.UserID != userID {
		return User{}, ErrUnauthorized
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	return user, nil
}

// ListUsers returns all users for administrators, ordered by username.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	if s.users == nil {
		return nil, nil
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	out := make([]User, len(users))
	copy(out, users)

	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Username, out[j].Username) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Username) < strings.ToLower(out[j].Username)
	})

	return out, nil
}

// ListEmployees returns active-roster material for administrators: every
// account with the employee role.
func (s *UserService) ListEmployees(ctx context.Context, principal Principal) ([]User, error) {
	users, err := s.ListUsers(ctx, principal)
	if err != nil {
		return nil, err
	}

	employees := make([]User, 0, len(users))
	for _, user := range users {
		if user.Role == RoleEmployee {
			employees = append(employees, user)
		}
	}
	return employees, nil
}

func (s *UserService) recordAudit(ctx context.Context, principal Principal, action, details string) {
	if s.audit == nil {
		return
	}
	// The trail is best effort; a failed append never rolls back the action.
	_ = s.audit.RecordAction(ctx, principal.UserID, action, details)
}

func normalizeUserInput(input UserInput) UserInput {
	areas := make([]string, 0, len(input.Areas))
	for _, area := range input.Areas {
		if trimmed := strings.TrimSpace(area); trimmed != "" {
			areas = append(areas, trimmed)
		}
	}

	return UserInput{
		Username:      strings.TrimSpace(input.Username),
		FullName:      strings.TrimSpace(input.FullName),
		Password:      input.Password,
		ShiftType:     input.ShiftType,
		Areas:         areas,
		DaysOff:       append([]int(nil), input.DaysOff...),
		IsActive:      input.IsActive,
		PrimaryRole:   strings.TrimSpace(input.PrimaryRole),
		SecondaryRole: strings.TrimSpace(input.SecondaryRole),
	}
}

func validateUserInput(input UserInput, requirePassword bool) *ValidationError {
	vErr := &ValidationError{}

	if input.Username == "" {
		vErr.add("username", "username is required")
	}
	if input.FullName == "" {
		vErr.add("full_name", "full name is required")
	}
	if requirePassword && input.Password == "" {
		vErr.add("password", "password is required")
	}
	if !input.ShiftType.Valid() {
		vErr.add("shift_type", "shift type is invalid")
	}
	for _, day := range input.DaysOff {
		if day < 0 || day > 6 {
			vErr.add("days_off", "weekday indices must be between 0 and 6")
			break
		}
	}
	if input.SecondaryRole != "" && input.SecondaryRole == input.PrimaryRole {
		vErr.add("secondary_role", "secondary role must differ from primary role")
	}

	return vErr
}
