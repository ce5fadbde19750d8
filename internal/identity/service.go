package identity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/asaskevich/govalidator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"checkin/internal/audit"
	"checkin/internal/platform/metrics"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/email"
)

// ErrDomainRejected is returned when the verified email does not belong to
// the configured company domain. The caller gets no employee record and no
// session; the attempt is audited.
var ErrDomainRejected = dErrors.New(dErrors.CodeForbidden, "email domain is not allowed")

var tracer = otel.Tracer("identity")

// EmployeeUpserter is the store dependency of the resolver.
type EmployeeUpserter interface {
	Upsert(ctx context.Context, candidate *Employee) (*Employee, error)
}

// Service admits verified identities: it gates on the company email domain
// and maps admitted identities onto employee records, provisioning on first
// login.
type Service struct {
	store         EmployeeUpserter
	allowedDomain string
	auditor       *audit.Publisher
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func NewService(store EmployeeUpserter, allowedDomain string, auditor *audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:         store,
		allowedDomain: strings.ToLower(strings.TrimSpace(allowedDomain)),
		auditor:       auditor,
		metrics:       m,
		logger:        logger,
	}
}

// Resolve validates the identity's email domain and returns the matching
// employee record, creating one on first login. Returns ErrDomainRejected
// for identities outside the company domain.
func (s *Service) Resolve(ctx context.Context, verified VerifiedIdentity) (*Employee, error) {
	ctx, span := tracer.Start(ctx, "identity.Resolve")
	defer span.End()

	address := email.Normalize(verified.Email)
	if address == "" || !govalidator.IsEmail(address) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email address is malformed")
	}
	if verified.SubjectID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject id is required")
	}

	if email.Domain(address) != s.allowedDomain {
		s.metrics.DomainRejected.Inc()
		s.auditor.Emit(ctx, audit.Event{
			Action: audit.ActionLoginDomainRejected,
			Email:  address,
		})
		s.logger.Info("login rejected by domain gate", "domain", email.Domain(address))
		return nil, ErrDomainRejected
	}

	displayName := strings.TrimSpace(verified.Name)
	if displayName == "" {
		first, last := email.DeriveNameFromEmail(address)
		displayName = first + " " + last
	}

	employee, err := s.store.Upsert(ctx, &Employee{
		SubjectID:   verified.SubjectID,
		Email:       address,
		DisplayName: displayName,
		AvatarURL:   verified.AvatarURL,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to upsert employee")
	}

	span.SetAttributes(attribute.String("employee.id", employee.ID.String()))
	s.metrics.Logins.Inc()
	s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionLoginSucceeded,
		EmployeeID: employee.ID,
		Email:      employee.Email,
	})
	return employee, nil
}
