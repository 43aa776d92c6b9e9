package directory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vitrineshop/catalog_api/internal/models"
)

// Field rule bounds shared by every adapter that accepts product payloads.
const (
	nameMinLen        = 3
	nameMaxLen        = 200
	descriptionMaxLen = 1000
)

// MaxPrice is the inclusive upper bound for a product price.
var MaxPrice = decimal.RequireFromString("999999.99")

// ValidateCreate checks every create rule and returns a VALIDATION_FAILED
// error carrying all violated messages, or nil when the input is clean.
func ValidateCreate(input *models.CreateInput) *models.ApiError {
	var violations []string

	violations = appendNameViolations(violations, input.Name, true)
	if input.Price == nil {
		violations = append(violations, "price is required")
	} else {
		violations = appendPriceViolations(violations, *input.Price)
	}
	if input.Category == "" {
		violations = append(violations, "category is required")
	} else if !input.Category.Valid() {
		violations = append(violations, invalidCategoryMessage(input.Category))
	}
	violations = appendDescriptionViolations(violations, input.Description)

	if len(violations) > 0 {
		return models.ErrValidationFailed(violations)
	}
	return nil
}

// ValidateUpdate checks the same rules as ValidateCreate but only for the
// fields actually present in the patch.
func ValidateUpdate(input *models.UpdateInput) *models.ApiError {
	var violations []string

	if input.Name != nil {
		violations = appendNameViolations(violations, *input.Name, true)
	}
	if input.Price != nil {
		violations = appendPriceViolations(violations, *input.Price)
	}
	if input.Category != nil {
		if *input.Category == "" {
			violations = append(violations, "category is required")
		} else if !input.Category.Valid() {
			violations = append(violations, invalidCategoryMessage(*input.Category))
		}
	}
	if input.Description != nil {
		violations = appendDescriptionViolations(violations, *input.Description)
	}

	if len(violations) > 0 {
		return models.ErrValidationFailed(violations)
	}
	return nil
}

func appendNameViolations(violations []string, name string, required bool) []string {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "" && required:
		violations = append(violations, "name is required")
	case len(trimmed) < nameMinLen || len(trimmed) > nameMaxLen:
		violations = append(violations,
			fmt.Sprintf("name must be between %d and %d characters", nameMinLen, nameMaxLen))
	}
	return violations
}

func appendPriceViolations(violations []string, price decimal.Decimal) []string {
	if price.IsNegative() {
		violations = append(violations, "price must not be negative")
	} else if price.GreaterThan(MaxPrice) {
		violations = append(violations, "price must be at most "+MaxPrice.String())
	}
	return violations
}

func appendDescriptionViolations(violations []string, description string) []string {
	if len(description) > descriptionMaxLen {
		violations = append(violations,
			fmt.Sprintf("description must be at most %d characters", descriptionMaxLen))
	}
	return violations
}

func invalidCategoryMessage(c models.Category) string {
	return fmt.Sprintf("category %q is invalid, must be one of %s", string(c), models.CategoryNames())
}
