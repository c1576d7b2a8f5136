package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

const agenciesPath = "/api/agency/agencies-brokers"

// ListAgencies lists agencies and brokers. With mine set only the caller's
// own profiles are returned.
func (c *Client) ListAgencies(ctx context.Context, mine bool) ([]Agency, error) {
	var build requestBuilder
	if mine {
		build = func(r *resty.Request) {
			r.SetQueryParam("mine", "true")
		}
	}
	body, err := c.do(ctx, http.MethodGet, agenciesPath, build, nil)
	if err != nil {
		return nil, err
	}
	return decodeItems[Agency](body)
}

// SaveAgency creates the agency, or updates it when agency.ID is set.
func (c *Client) SaveAgency(ctx context.Context, agency Agency) (Agency, error) {
	if err := Validate(agency); err != nil {
		return Agency{}, err
	}
	method, path := http.MethodPost, agenciesPath
	if agency.ID != 0 {
		method, path = http.MethodPut, agencyPath(agency.ID)
	}
	var out Agency
	if _, err := c.do(ctx, method, path, jsonBody(agency), &out); err != nil {
		return Agency{}, err
	}
	if out.ID == 0 {
		out.ID = agency.ID
	}
	return out, nil
}

// DeleteAgency removes an agency.
func (c *Client) DeleteAgency(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, agencyPath(id), nil, nil)
	return err
}

// ApproveAgency marks a pending agency as approved.
func (c *Client) ApproveAgency(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodPut, agencyPath(id)+"/approve", nil, nil)
	return err
}

// UploadAgencyLogo replaces the agency logo.
func (c *Client) UploadAgencyLogo(ctx context.Context, id int64, logo model.Upload) error {
	if id == 0 {
		return goerr.Wrap(ErrInvalidInput, "agency id is required")
	}
	_, err := c.do(ctx, http.MethodPost, agencyPath(id)+"/logo", multipart(nil, "file", &logo), nil)
	return err
}

// UploadCertificate attaches an RDB certificate to a user.
func (c *Client) UploadCertificate(ctx context.Context, userID int64, cert model.Upload) error {
	fields := map[string]string{"user_id": ""}
	if userID != 0 {
		fields["user_id"] = strconv.FormatInt(userID, 10)
	}
	_, err := c.do(ctx, http.MethodPost, "/api/agency/rdb-certificate/upload", multipart(fields, "file", &cert), nil)
	return err
}

func agencyPath(id int64) string {
	return agenciesPath + "/" + strconv.FormatInt(id, 10)
}
