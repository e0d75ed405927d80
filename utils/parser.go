package utils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vialabs/payorder/types"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct runs tag-based validation and wraps failures as validation
// errors.
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return &types.PayError{
			Code:    types.ErrValidation,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}
	return nil
}

// ValidateClientReferenceID checks a caller-supplied idempotency key. The key
// must be a UUID; callers drop an invalid key rather than aborting the
// request.
func ValidateClientReferenceID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid client reference id: %w", err)
	}
	return parsed.String(), nil
}
