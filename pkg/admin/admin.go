// Package admin runs the back-office operations: agency onboarding, account
// management and taxonomy maintenance.
package admin

import (
	"context"
	"log/slog"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/api"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

// AgencyClient manages agency and broker profiles.
type AgencyClient interface {
	ListAgencies(ctx context.Context, mine bool) ([]api.Agency, error)
	SaveAgency(ctx context.Context, agency api.Agency) (api.Agency, error)
	DeleteAgency(ctx context.Context, id int64) error
	ApproveAgency(ctx context.Context, id int64) error
	UploadAgencyLogo(ctx context.Context, id int64, logo model.Upload) error
	UploadCertificate(ctx context.Context, userID int64, cert model.Upload) error
}

// UserClient manages accounts.
type UserClient interface {
	ListUsers(ctx context.Context) ([]api.User, error)
	SetUserStatus(ctx context.Context, userID int64, status string) error
	AssignRoles(ctx context.Context, assignment api.RoleAssignment) error
}

// CategoryClient maintains the backend taxonomy.
type CategoryClient interface {
	SaveCategory(ctx context.Context, id int64, input api.CategoryInput) (taxonomy.RemoteCategory, error)
	DeleteCategory(ctx context.Context, id int64) error
	SaveSubCategory(ctx context.Context, id int64, input api.SubCategoryInput) (taxonomy.RemoteSubCategory, error)
	DeleteSubCategory(ctx context.Context, id int64) error
}

// Client is everything the admin service calls. *api.Client satisfies it.
type Client interface {
	AgencyClient
	UserClient
	CategoryClient
}

// Service runs admin operations against the backend.
type Service struct {
	client Client
	store  *taxonomy.Store
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithStore reloads store after every taxonomy change.
func WithStore(store *taxonomy.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithLogger overrides the logger used for dependent-upload warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a Service backed by client.
func New(client Client, opts ...Option) *Service {
	s := &Service{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.From(ctx)
}
