package api

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

const (
	categoriesPath    = "/api/property/categories"
	subCategoriesPath = "/api/property/subcategories"
)

var _ taxonomy.Source = (*Client)(nil)

// Categories lists the backend categories.
func (c *Client) Categories(ctx context.Context) ([]taxonomy.RemoteCategory, error) {
	body, err := c.do(ctx, http.MethodGet, categoriesPath, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeItems[taxonomy.RemoteCategory](body)
}

// SubCategories lists the backend sub-categories.
func (c *Client) SubCategories(ctx context.Context) ([]taxonomy.RemoteSubCategory, error) {
	body, err := c.do(ctx, http.MethodGet, subCategoriesPath, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeItems[taxonomy.RemoteSubCategory](body)
}

// SaveCategory creates a category, or updates it when id is non-zero.
func (c *Client) SaveCategory(ctx context.Context, id int64, input CategoryInput) (taxonomy.RemoteCategory, error) {
	if err := Validate(input); err != nil {
		return taxonomy.RemoteCategory{}, err
	}
	fields := map[string]string{"name": input.Name, "label": input.Label}
	var out taxonomy.RemoteCategory
	method, path := saveTarget(categoriesPath, id)
	if _, err := c.do(ctx, method, path, multipart(fields, "icon", input.Icon), &out); err != nil {
		return taxonomy.RemoteCategory{}, err
	}
	return out, nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, categoriesPath+"/"+strconv.FormatInt(id, 10), nil, nil)
	return err
}

// SaveSubCategory creates a sub-category, or updates it when id is non-zero.
func (c *Client) SaveSubCategory(ctx context.Context, id int64, input SubCategoryInput) (taxonomy.RemoteSubCategory, error) {
	if err := Validate(input); err != nil {
		return taxonomy.RemoteSubCategory{}, err
	}
	fields := map[string]string{
		"category_id": strconv.FormatInt(input.CategoryID, 10),
		"name":        input.Name,
		"label":       input.Label,
	}
	var out taxonomy.RemoteSubCategory
	method, path := saveTarget(subCategoriesPath, id)
	if _, err := c.do(ctx, method, path, multipart(fields, "icon", input.Icon), &out); err != nil {
		return taxonomy.RemoteSubCategory{}, err
	}
	return out, nil
}

// DeleteSubCategory removes a sub-category.
func (c *Client) DeleteSubCategory(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, subCategoriesPath+"/"+strconv.FormatInt(id, 10), nil, nil)
	return err
}

func saveTarget(base string, id int64) (string, string) {
	if id == 0 {
		return http.MethodPost, base
	}
	return http.MethodPut, base + "/" + strconv.FormatInt(id, 10)
}

// multipart builds a multipart request with form fields and an optional
// file part.
func multipart(fields map[string]string, fileParam string, file *model.Upload) requestBuilder {
	return func(r *resty.Request) {
		if len(fields) > 0 {
			r.SetMultipartFormData(fields)
		}
		if file != nil && len(file.Data) > 0 {
			r.SetMultipartField(fileParam, file.Name, contentType(file), bytes.NewReader(file.Data))
		}
	}
}

func contentType(file *model.Upload) string {
	if file.ContentType != "" {
		return file.ContentType
	}
	return "application/octet-stream"
}
