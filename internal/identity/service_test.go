package identity_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"checkin/internal/audit"
	"checkin/internal/identity"
	"checkin/internal/identity/store"
	"checkin/internal/platform/metrics"
	dErrors "checkin/pkg/domain-errors"
)

type ResolveSuite struct {
	suite.Suite
	service *identity.Service
	store   *store.InMemoryEmployeeStore
	sink    *audit.MemorySink
	pub     *audit.Publisher
	metrics *metrics.Metrics
	cancel  context.CancelFunc
	done    chan struct{}
}

func TestResolveSuite(t *testing.T) {
	suite.Run(t, new(ResolveSuite))
}

func (s *ResolveSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.New()
	s.pub = audit.NewPublisher(64, logger)
	s.sink = audit.NewMemorySink()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = identity.NewService(s.store, "company.co", s.pub, s.metrics, logger)

	worker := audit.NewWorker(s.pub.Inbox(), s.sink, logger)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(s.done)
	}()
}

func (s *ResolveSuite) TearDownTest() {
	s.cancel()
	<-s.done
}

func (s *ResolveSuite) TestFirstLoginProvisionsEmployee() {
	employee, err := s.service.Resolve(context.Background(), identity.VerifiedIdentity{
		SubjectID: "google-sub-1",
		Email:     "Somsak.J@Company.co",
		Name:      "Somsak Jaidee",
		AvatarURL: "https://img.example/somsak.png",
	})

	s.Require().NoError(err)
	s.False(employee.ID.IsNil())
	s.Equal("somsak.j@company.co", employee.Email)
	s.Equal("Somsak Jaidee", employee.DisplayName)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Logins))
}

func (s *ResolveSuite) TestRepeatLoginReusesEmployee() {
	first, err := s.service.Resolve(context.Background(), identity.VerifiedIdentity{
		SubjectID: "google-sub-1",
		Email:     "somsak.j@company.co",
	})
	s.Require().NoError(err)

	second, err := s.service.Resolve(context.Background(), identity.VerifiedIdentity{
		SubjectID: "google-sub-1",
		Email:     "somsak.j@company.co",
		Name:      "Somsak J.",
	})
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal("Somsak J.", second.DisplayName)
}

func (s *ResolveSuite) TestNameDefaultsFromEmailLocalPart() {
	employee, err := s.service.Resolve(context.Background(), identity.VerifiedIdentity{
		SubjectID: "google-sub-2",
		Email:     "mali.suk@company.co",
	})

	s.Require().NoError(err)
	s.Equal("Mali Suk", employee.DisplayName)
}

func (s *ResolveSuite) TestForeignDomainRejected() {
	for _, address := range []string{
		"intruder@gmail.com",
		"somsak@company.co.evil.com",
		"somsak@sub.company.co",
	} {
		s.Run(address, func() {
			_, err := s.service.Resolve(context.Background(), identity.VerifiedIdentity{
				SubjectID: "google-sub-3",
				Email:     address,
			})
			s.ErrorIs(err, identity.ErrDomainRejected)
		})
	}

	s.Equal(float64(3), testutil.ToFloat64(s.metrics.DomainRejected))
	s.Equal(float64(0), testutil.ToFloat64(s.metrics.Logins))
}

func (s *ResolveSuite) TestDomainComparisonIsCaseInsensitive() {
	_, err := s.service.Resolve(context.Background(), identity.VerifiedIdentity{
		SubjectID: "google-sub-4",
		Email:     "somsak@COMPANY.CO",
	})
	s.NoError(err)
}

func (s *ResolveSuite) TestMalformedInputRejected() {
	cases := map[string]identity.VerifiedIdentity{
		"empty email":     {SubjectID: "sub", Email: ""},
		"no at sign":      {SubjectID: "sub", Email: "not-an-email"},
		"missing subject": {SubjectID: "", Email: "somsak@company.co"},
	}
	for name, verified := range cases {
		s.Run(name, func() {
			_, err := s.service.Resolve(context.Background(), verified)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func (s *ResolveSuite) TestRejectedLoginIsAudited() {
	_, err := s.service.Resolve(context.Background(), identity.VerifiedIdentity{
		SubjectID: "google-sub-5",
		Email:     "intruder@gmail.com",
	})
	s.Require().ErrorIs(err, identity.ErrDomainRejected)

	s.cancel()
	<-s.done

	events := s.sink.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.ActionLoginDomainRejected, events[0].Action)
	s.Equal("intruder@gmail.com", events[0].Email)
	s.True(events[0].EmployeeID.IsNil())
}
