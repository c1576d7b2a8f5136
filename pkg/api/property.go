package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

const propertiesPath = "/api/property/properties"

// LookupParcel returns the raw parcel record for upi.
func (c *Client) LookupParcel(ctx context.Context, upi, ownerID string) ([]byte, error) {
	body := map[string]string{"upi": upi, "owner_id": ownerID}
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodPost, "/api/external/parcel", jsonBody(body), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// MyProperties lists the properties recorded by the authenticated user.
func (c *Client) MyProperties(ctx context.Context) ([]map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, propertiesPath+"/mine", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeItems[map[string]any](body)
}

// CreateProperty records a property and returns its identity.
func (c *Client) CreateProperty(ctx context.Context, payload any) (Created, error) {
	var out Created
	if _, err := c.do(ctx, http.MethodPost, propertiesPath, jsonBody(payload), &out); err != nil {
		return Created{}, err
	}
	return out, nil
}

// UploadPropertyImage attaches one gallery image to a property.
func (c *Client) UploadPropertyImage(ctx context.Context, propertyID string, image model.Upload) error {
	if propertyID == "" {
		return goerr.Wrap(ErrInvalidInput, "property id is required")
	}
	fields := map[string]string{"category": "gallery", "file_type": "image"}
	path := propertiesPath + "/" + propertyID + "/images"
	_, err := c.do(ctx, http.MethodPost, path, multipart(fields, "file", &image), nil)
	return err
}

func jsonBody(body any) requestBuilder {
	return func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	}
}
