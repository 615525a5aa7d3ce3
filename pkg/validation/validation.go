package validation

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/vinodismyname/buzzlens/pkg/pagination"
)

var (
	v    *validator.Validate
	once sync.Once
)

var (
	importExts = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}
	exportExts = []string{".xlsx", ".csv"}
	metrics    = []string{"buzz", "yoy", "search"}
	formats    = []string{"xlsx", "csv"}
)

func hasExt(s string, exts []string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, e := range exts {
		if strings.HasSuffix(s, e) {
			return true
		}
	}
	return false
}

func oneOfFold(s string, opts []string) bool {
	s = strings.TrimSpace(s)
	for _, o := range opts {
		if strings.EqualFold(s, o) {
			return true
		}
	}
	return false
}

// Validator returns a singleton validator with custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// Custom: workbook path must have a supported Excel extension
		_ = v.RegisterValidation("filepath_ext", func(fl validator.FieldLevel) bool {
			return hasExt(fl.Field().String(), importExts)
		})
		_ = v.RegisterValidation("export_ext", func(fl validator.FieldLevel) bool {
			return hasExt(fl.Field().String(), exportExts)
		})
		_ = v.RegisterValidation("metric", func(fl validator.FieldLevel) bool {
			return oneOfFold(fl.Field().String(), metrics)
		})
		_ = v.RegisterValidation("export_format", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || oneOfFold(s, formats)
		})
		// Custom: month filters may be numbers, "N月" or English names; the
		// handler canonicalizes them, so only reject empty tokens here.
		_ = v.RegisterValidation("month_token", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		// Custom: cursor must be decodable via pagination.DecodeCursor
		_ = v.RegisterValidation("cursor", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true // empty is allowed; use omitempty with this tag
			}
			if _, err := base64.RawURLEncoding.DecodeString(s); err != nil {
				return false
			}
			_, err := pagination.DecodeCursor(s)
			return err == nil
		})
	})
	return v
}

// ValidateStruct validates a struct and returns a user-friendly error string
// suitable for MCP tool errors. Returns empty string when valid.
func ValidateStruct(s any) string {
	err := Validator().Struct(s)
	if err == nil {
		return ""
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return "VALIDATION: invalid inputs"
	}
	fe := ve[0]
	field := snake(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("VALIDATION: %s is required", field)
	case "required_without":
		return fmt.Sprintf("VALIDATION: %s is required unless %s is given", field, snake(fe.Param()))
	case "filepath_ext":
		return "VALIDATION: path must be an Excel file (.xlsx, .xlsm, .xltx, .xltm)"
	case "export_ext":
		return "VALIDATION: output path must end in .xlsx or .csv"
	case "metric":
		return "VALIDATION: metric must be one of buzz, yoy, search"
	case "export_format":
		return "VALIDATION: format must be xlsx or csv"
	case "month_token":
		return "VALIDATION: months must be non-empty (e.g. 7, 7月, Jul)"
	case "cursor":
		return "CURSOR_INVALID: failed to decode cursor; restart pagination"
	case "min", "max", "gte", "lte":
		return fmt.Sprintf("VALIDATION: %s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("VALIDATION: invalid %s", field)
}

// snake maps Go field names like DatasetID to dataset_id; json names pass through.
func snake(s string) string {
	var b strings.Builder
	rs := []rune(s)
	for i, r := range rs {
		if unicode.IsUpper(r) && i > 0 && unicode.IsLower(rs[i-1]) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
