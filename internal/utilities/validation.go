package utilities

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	phonePattern   = regexp.MustCompile(`^(\+91[\-\s]?)?[6-9]\d{9}$`)
	aadharPattern  = regexp.MustCompile(`^\d{12}$`)
	panPattern     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	ifscPattern    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	pincodePattern = regexp.MustCompile(`^[1-9]\d{5}$`)

	registerOnce sync.Once
)

// RegisterValidators installs the custom binding tags (phone, aadhar, pan, ifsc, pincode)
// on gin's validator and makes error fields report their json names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("phone", matchPattern(phonePattern))
		_ = v.RegisterValidation("aadhar", matchPattern(aadharPattern))
		_ = v.RegisterValidation("pan", matchPattern(panPattern))
		_ = v.RegisterValidation("ifsc", matchPattern(ifscPattern))
		_ = v.RegisterValidation("pincode", matchPattern(pincodePattern))
	})
}

func matchPattern(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// BindJSON decodes and validates the request body into dst.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return BindingError(err)
	}
	return nil
}

// BindingError turns a gin binding failure into a ValidationError with a readable message.
func BindingError(err error) *AppError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationError("Invalid request body: %s", err.Error())
	}

	var missing, invalid []string
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
			continue
		}
		invalid = append(invalid, describeFieldError(fe))
	}
	if len(missing) > 0 {
		return ValidationError("Missing required fields: %s", strings.Join(missing, ", "))
	}
	return ValidationError("%s", strings.Join(invalid, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return fmt.Sprintf("Invalid email address in %s", fe.Field())
	case "phone":
		return fmt.Sprintf("Invalid phone number in %s", fe.Field())
	case "aadhar":
		return "Aadhar number must be exactly 12 digits"
	case "pan":
		return "Invalid PAN number format"
	case "ifsc":
		return "Invalid IFSC code format"
	case "pincode":
		return "Pincode must be 6 digits"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must not be negative", fe.Field())
	default:
		return fmt.Sprintf("Invalid value for %s", fe.Field())
	}
}

// FieldMap flattens a json tagged struct into a field map suitable for a $set update.
func FieldMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
