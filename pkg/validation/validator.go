package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/currency"
)

// Processor object id shapes, e.g. acct_1Nv0FGQ9RKHgCVdK.
var (
	accountIDPattern    = regexp.MustCompile(`^acct_[A-Za-z0-9]+$`)
	customerIDPattern   = regexp.MustCompile(`^cus_[A-Za-z0-9]+$`)
	instrumentIDPattern = regexp.MustCompile(`^(pm|card)_[A-Za-z0-9_]+$`)
)

var (
	std     *validator.Validate
	stdOnce sync.Once
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers processor id and currency tags.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		register(v)
	}
}

func register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("stripe_acct", matches(accountIDPattern))
	_ = v.RegisterValidation("stripe_cus", matches(customerIDPattern))
	_ = v.RegisterValidation("stripe_pm", matches(instrumentIDPattern))
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return IsCurrency(fl.Field().String())
	})
	v.RegisterAlias("minor_amount", "gt=0")
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Validator returns a standalone validator with the same tags as the Gin engine.
// The payments core uses it so it validates identically outside HTTP.
func Validator() *validator.Validate {
	stdOnce.Do(func() {
		std = validator.New()
		register(std)
	})
	return std
}

// Var validates a single value against tag.
func Var(value any, tag string) error {
	return Validator().Var(value, tag)
}

// IsCurrency reports whether code is an ISO 4217 currency code, case-insensitive.
func IsCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	_, err := currency.ParseISO(strings.ToUpper(code))
	return err == nil
}

// IsAccountID reports whether id has the connected account shape.
func IsAccountID(id string) bool { return accountIDPattern.MatchString(id) }

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) {
		return map[string]string{"payload": "invalid json"}
	}
	if errors.As(err, &ute) {
		if ute.Field != "" {
			return map[string]string{ute.Field: "must be a " + ute.Type.String()}
		}
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	// ===== PRESENCE =====
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + param + " is not present"

	// ===== FORMAT =====
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "alpha":
		return "must contain alphabetic characters only"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")

	// ===== NUMERIC =====
	case "gt", "minor_amount":
		if param == "" {
			param = "0"
		}
		return "must be greater than " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"

	// ===== PROCESSOR IDS =====
	case "stripe_acct":
		return "must be a connected account id (acct_...)"
	case "stripe_cus":
		return "must be a customer id (cus_...)"
	case "stripe_pm":
		return "must be a payment method id (pm_...)"
	case "currency":
		return "must be an ISO 4217 currency code"

	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
