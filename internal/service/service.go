package service

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-manager/internal/models"
	appErrors "github.com/noah-isme/edu-manager/pkg/errors"
)

func defaults(validate *validator.Validate, logger *zap.Logger) (*validator.Validate, *zap.Logger) {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return validate, logger
}

func invalid(err error, entity string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid "+entity+" payload")
}

func loadError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load "+entity)
}

func writeError(err error, verb, entity string) error {
	if appErrors.IsForeignKeyViolation(err) {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, entity+" is referenced by other records")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to "+verb+" "+entity)
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func optional(value string) *string {
	return normalizeOptional(&value)
}

// optionalInt parses a value already validated as digits; empty input is NULL.
func optionalInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func optionalID(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func optionalDate(raw string) (*models.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// truncateRunes keeps the first n characters of s.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatID(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatDate(v *models.Date) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
