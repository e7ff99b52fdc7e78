package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-match/internal/types"
)

// MinInputLength is the number of characters each trimmed input must exceed.
const MinInputLength = 50

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// IsValidInput reports whether both texts are long enough to be analyzed.
// Both strings are trimmed first; lengths are counted in characters.
func IsValidInput(resumeText, jobDescriptionText string) bool {
	return longEnough(resumeText, MinInputLength) && longEnough(jobDescriptionText, MinInputLength)
}

// ValidateRequest applies the same rule as IsValidInput to a request and
// returns an *InputError naming every field that failed.
func ValidateRequest(req *types.AnalysisRequest) error {
	if req == nil {
		return &InputError{Fields: []string{"resume_text", "job_description_text"}}
	}

	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &InputError{}
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fe.Field())
	}
	return &InputError{Fields: fields}
}

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(jsonFieldName)
		// Registration only fails for an empty tag or nil func.
		_ = v.RegisterValidation("trimmed_gt", trimmedGreaterThan)
		validate = v
	})
	return validate
}

// trimmedGreaterThan implements the trimmed_gt=N tag
func trimmedGreaterThan(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return longEnough(fl.Field().String(), limit)
}

func longEnough(text string, limit int) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed != "" && utf8.RuneCountInString(trimmed) > limit
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}
