package admin

import (
	"context"
	"fmt"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/api"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/submission"
	"github.com/m-mizutani/goerr/v2"
)

// AgencyRequest saves an agency with its optional logo and RDB certificate.
type AgencyRequest struct {
	Agency      api.Agency
	Logo        *model.Upload
	Certificate *model.Upload
}

// AgencyResult is the saved agency plus any dependent-upload warnings.
type AgencyResult struct {
	Agency   api.Agency
	Warnings []string
}

// Agencies lists every agency, or only the caller's when mine is set.
func (s *Service) Agencies(ctx context.Context, mine bool) ([]api.Agency, error) {
	agencies, err := s.client.ListAgencies(ctx, mine)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list agencies")
	}
	return agencies, nil
}

// SaveAgency creates or updates an agency, then uploads the logo and the
// certificate. Upload failures do not fail the save.
func (s *Service) SaveAgency(ctx context.Context, req AgencyRequest) (AgencyResult, error) {
	saved, err := s.client.SaveAgency(ctx, req.Agency)
	if err != nil {
		return AgencyResult{}, goerr.Wrap(err, "failed to save agency", goerr.V(AgencyKey, req.Agency.Name))
	}
	result := AgencyResult{Agency: saved}
	if saved.ID == 0 {
		return result, nil
	}

	logger := s.log(ctx).With(AgencyKey, saved.ID)
	if req.Logo != nil {
		if err := s.client.UploadAgencyLogo(ctx, saved.ID, *req.Logo); err != nil {
			logger.Warn("agency logo upload failed", "file", req.Logo.Name, "error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("Logo upload failed: %s", submission.ErrorMessage(err)))
		}
	}
	if req.Certificate != nil {
		if err := s.client.UploadCertificate(ctx, req.Agency.OwnerUserID, *req.Certificate); err != nil {
			logger.Warn("RDB certificate upload failed", "file", req.Certificate.Name, "error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("Certificate upload failed: %s", submission.ErrorMessage(err)))
		}
	}
	return result, nil
}

// DeleteAgency removes an agency.
func (s *Service) DeleteAgency(ctx context.Context, id int64) error {
	if err := s.client.DeleteAgency(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete agency", goerr.V(AgencyKey, id))
	}
	return nil
}

// ApproveAgency activates a pending agency.
func (s *Service) ApproveAgency(ctx context.Context, id int64) error {
	if err := s.client.ApproveAgency(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to approve agency", goerr.V(AgencyKey, id))
	}
	s.log(ctx).Info("agency approved", AgencyKey, id)
	return nil
}
