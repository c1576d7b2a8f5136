package api

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of a request input.
func Validate(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		failed := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			failed = append(failed, strings.ToLower(fe.Field())+":"+fe.Tag())
		}
		return goerr.Wrap(ErrInvalidInput, "input validation failed", goerr.V("fields", failed))
	}
	return goerr.Wrap(ErrInvalidInput, "input validation failed", goerr.V("cause", err.Error()))
}

// CategoryInput creates or updates a category.
type CategoryInput struct {
	Name  string `validate:"required"`
	Label string `validate:"required"`
	Icon  *model.Upload
}

// SubCategoryInput creates or updates a sub-category.
type SubCategoryInput struct {
	CategoryID int64  `validate:"required,gt=0"`
	Name       string `validate:"required"`
	Label      string `validate:"required"`
	Icon       *model.Upload
}

// Agency is an agency or broker profile.
type Agency struct {
	ID              int64  `json:"id,omitempty"`
	Name            string `json:"name" validate:"required"`
	Type            string `json:"type" validate:"required,oneof=agency broker"`
	Location        string `json:"location,omitempty"`
	OwnerUserID     int64  `json:"owner_user_id,omitempty" validate:"gte=0"`
	LogoPath        string `json:"logo_path,omitempty"`
	CertificatePath string `json:"certificate_path,omitempty"`
	Status          string `json:"status,omitempty" validate:"omitempty,oneof=active inactive pending"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// User is an account as listed by the admin endpoint.
type User struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username,omitempty"`
	Email     string   `json:"email,omitempty"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	Status    string   `json:"status,omitempty"`
}

// StatusInput changes an account status.
type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
}

// RoleAssignment replaces the roles of a user.
type RoleAssignment struct {
	UserID int64    `json:"user_id" validate:"required,gt=0"`
	Roles  []string `json:"roles" validate:"required,min=1,dive,required"`
}

// Created is the identity echoed back by create endpoints.
type Created struct {
	ID any `json:"id"`
}

// IDString renders the created id whether the backend sent a number or a
// string.
func (c Created) IDString() string {
	if c.ID == nil {
		return ""
	}
	return model.Text(c.ID)
}
