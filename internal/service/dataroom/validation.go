package dataroom

import (
	"fmt"
	"regexp"
	"strings"

	"dataroom/internal/config"
	"dataroom/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var noSlash = regexp.MustCompile(`^[^/]+$`)

// nameRules are the rules shared by data room, folder and file names.
// Names are trimmed before validation.
func nameRules(kind string, maxLength int) []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(kind + " name is required"),
		validation.RuneLength(1, maxLength).Error(fmt.Sprintf("%s name must be between 1 and %d characters", kind, maxLength)),
		validation.Match(noSlash).Error(kind + " name cannot contain slashes"),
	}
}

// validateName trims name and checks it. The trimmed name is returned.
func validateName(kind, name string, maxLength int) (string, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, nameRules(kind, maxLength)...); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return name, nil
}

// requireID checks a client-supplied identifier. A missing one is a
// validation failure; a malformed one can never match a row and is reported
// as not found, same as an unknown or foreign identifier.
func requireID(field, resourceType, id string) error {
	if err := validation.Validate(id, validation.Required); err != nil {
		return fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	if err := validation.Validate(id, is.UUID); err != nil {
		return domain.NewNotFound(resourceType, id)
	}
	return nil
}

// copyName is the name given to a duplicate. It must still fit the limit.
func copyName(kind, name string, maxLength int) (string, error) {
	return validateName(kind, name+config.CopySuffix, maxLength)
}
