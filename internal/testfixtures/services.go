package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/attendance-console/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// AttendanceService builds an attendance service on the factory's clock and
// identifier sequence.
func (f *ServiceFactory) AttendanceService(records application.AttendanceRepository, logger *slog.Logger) *application.AttendanceService {
	return application.NewAttendanceServiceWithLogger(records, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), logger)
}

// UserService builds a user service on the factory's clock and identifier
// sequence.
func (f *ServiceFactory) UserService(users application.UserRepository, audit application.AuditRecorder, logger *slog.Logger) *application.UserService {
	return application.NewUserServiceWithLogger(users, audit, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), logger)
}

// AuthService builds an authentication service with the supplied verifier and
// session lifetime. A nil verifier falls back to argon2id verification.
func (f *ServiceFactory) AuthService(credentials application.CredentialStore, sessions application.SessionRepository, verify application.PasswordVerifier, sessionTTL time.Duration, logger *slog.Logger) *application.AuthService {
	return application.NewAuthServiceWithLogger(credentials, sessions, verify, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), sessionTTL, logger)
}

// RosterService builds a roster service on the factory's clock.
func (f *ServiceFactory) RosterService(rosters application.RosterRepository, users application.UserRepository, audit application.AuditRecorder, logger *slog.Logger) *application.RosterService {
	return application.NewRosterServiceWithLogger(rosters, users, audit, f.Clock.NowFunc(), logger)
}

// ReportService builds a report service on the factory's clock.
func (f *ServiceFactory) ReportService(users application.ReportUserLister, records application.ReportRecordLister, logger *slog.Logger) *application.ReportService {
	return application.NewReportServiceWithLogger(users, records, f.Clock.NowFunc(), logger)
}

// AuditService builds an audit service on the factory's clock and identifier
// sequence.
func (f *ServiceFactory) AuditService(entries application.AuditRepository, logger *slog.Logger) *application.AuditService {
	return application.NewAuditServiceWithLogger(entries, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), logger)
}
