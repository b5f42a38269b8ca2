// Package security provides input validation functionality.
package security

import (
	"errors"
	"strings"
	"unicode/utf8"

	apperrors "github.com/desy0305/e-KanBan2clicks/internal/errors"
	"github.com/desy0305/e-KanBan2clicks/internal/models"
	"github.com/go-playground/validator/v10"
)

// Messages returned to clients for malformed card payloads.
const (
	MsgMissingFields   = "Missing required fields"
	MsgInvalidQuantity = "Invalid quantity value"
	MsgMissingStatus   = "Missing status"
)

// ValidationService provides centralized input validation functions.
// All validation methods return *apperrors.ValidationError with messages that are
// safe to show to users.
type ValidationService struct {
	config   *SecurityConfig
	validate *validator.Validate
}

// NewValidationService creates a new validation service with security configuration.
func NewValidationService(config *SecurityConfig) *ValidationService {
	return &ValidationService{
		config:   config,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ValidateRegistration checks that username, password and organization are present
// and within length limits. Organization is otherwise free-form: no registry lookup,
// no case folding.
func (v *ValidationService) ValidateRegistration(form models.RegisterForm) error {
	if err := v.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			field := strings.ToLower(fieldErrs[0].Field())
			return apperrors.NewValidationError(field, field+" is required")
		}
		return apperrors.NewValidationError("", err.Error())
	}

	if err := v.ValidateRequired("username", form.Username); err != nil {
		return err
	}
	if err := v.ValidateRequired("organization", form.Organization); err != nil {
		return err
	}
	if err := v.ValidateLength("username", form.Username, 1, v.config.MaxUsernameLength); err != nil {
		return err
	}
	if err := v.ValidateLength("organization", form.Organization, 1, v.config.MaxOrganizationLength); err != nil {
		return err
	}
	if len(form.Password) > v.config.MaxPasswordBytes {
		return apperrors.NewValidationError("password", "password is too long")
	}

	return nil
}

// ValidateCard checks a new card payload. Item, status, location and supplier must
// be present; quantity must be a non-negative number.
func (v *ValidationService) ValidateCard(form models.CardForm) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("", err.Error())
	}

	// Missing fields take precedence over a bad quantity, matching the order in
	// which clients are told about problems.
	for _, fe := range fieldErrs {
		if fe.Field() != "Quantity" && fe.Tag() == "required" {
			return apperrors.NewValidationError(strings.ToLower(fe.Field()), MsgMissingFields)
		}
	}
	for _, fe := range fieldErrs {
		if fe.Field() == "Quantity" {
			if fe.Tag() == "required" {
				return apperrors.NewValidationError("quantity", MsgMissingFields)
			}
			return apperrors.NewValidationError("quantity", MsgInvalidQuantity)
		}
	}

	fe := fieldErrs[0]
	return apperrors.NewValidationError(strings.ToLower(fe.Field()), strings.ToLower(fe.Field())+" is too long")
}

// ValidateStatusUpdate checks the body of a status update.
func (v *ValidationService) ValidateStatusUpdate(form models.StatusUpdateForm) error {
	if err := v.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Tag() != "required" {
			return apperrors.NewValidationError("status", "status is too long")
		}
		return apperrors.NewValidationError("status", MsgMissingStatus)
	}
	return nil
}

// ValidateRequired checks if a required field is present and non-blank.
func (v *ValidationService) ValidateRequired(fieldName, value string) error {
	if value == "" {
		return apperrors.NewValidationError(fieldName, fieldName+" is required")
	}

	if strings.TrimSpace(value) == "" {
		return apperrors.NewValidationError(fieldName, fieldName+" cannot be empty")
	}

	return nil
}

// ValidateLength validates string length is within bounds.
func (v *ValidationService) ValidateLength(fieldName string, value string, min, max int) error {
	length := utf8.RuneCountInString(value)

	if length < min {
		return apperrors.NewValidationError(fieldName, fieldName+" is too short")
	}

	if length > max {
		return apperrors.NewValidationError(fieldName, fieldName+" is too long")
	}

	return nil
}
