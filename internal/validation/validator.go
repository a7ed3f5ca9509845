package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/?([0-9]{2})$`)
	cvvRe    = regexp.MustCompile(`^[0-9]{3,4}$`)
	cardRe   = regexp.MustCompile(`^[0-9 ]{12,23}$`)
)

var std = New()

// New returns a validator that reports fields by their json names and knows the card rules.
func New() *validatorv10.Validate {
	v := validatorv10.New(validatorv10.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// decimals are compared as floats so gte/lte work on money fields
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		d, ok := f.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		out, _ := d.Float64()
		return out
	}, decimal.Decimal{})

	_ = v.RegisterValidation("expiry", func(fl validatorv10.FieldLevel) bool {
		return expiryRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("cvv", func(fl validatorv10.FieldLevel) bool {
		return cvvRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("cardnumber", func(fl validatorv10.FieldLevel) bool {
		return cardRe.MatchString(fl.Field().String())
	})

	return v
}

// FieldErrors maps a json field name to a user facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return strings.Join(parts, "; ")
}

// Struct validates v and returns FieldErrors when any rule fails.
func Struct(v any) error {
	err := std.Struct(v)
	if err == nil {
		return nil
	}
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range ve {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "expiry":
		return "must be MM/YY"
	case "cvv":
		return "must be 3 or 4 digits"
	case "cardnumber":
		return "is not a valid card number"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}
