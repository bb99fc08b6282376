package checkout

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"dulce-kart/internal/model"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of delivery dates.
const DateLayout = "2006-01-02"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Chilean mobile: optional +56/56 prefix, then 9 and eight digits, with
	// free spacing.
	phonePattern = regexp.MustCompile(`^(\+?56)?\s*9(\s*\d){8}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("cl_mobile", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// Validator returns the shared validator. Its errors name fields by their
// json names and it knows the basic_email and cl_mobile tags.
func Validator() *validator.Validate {
	return validate
}

// FieldErrors maps a form field to a human readable message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IdentityForm is collected in the Identity stage.
type IdentityForm struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,basic_email"`
	Phone     string `json:"phone" validate:"required,cl_mobile"`
}

func (f IdentityForm) normalised() IdentityForm {
	return IdentityForm{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
		Phone:     strings.TrimSpace(f.Phone),
	}
}

// Customer converts the form into the order payload shape.
func (f IdentityForm) Customer() model.CustomerInfo {
	return model.CustomerInfo{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Phone:     f.Phone,
	}
}

// DeliveryForm is collected in the Delivery stage.
type DeliveryForm struct {
	Address       string              `json:"address" validate:"required"`
	Comuna        string              `json:"comuna"`
	Date          string              `json:"date" validate:"required"`
	TimeWindow    string              `json:"timeWindow"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Notes         string              `json:"notes"`
}

func (f DeliveryForm) normalised() DeliveryForm {
	return DeliveryForm{
		Address:       strings.TrimSpace(f.Address),
		Comuna:        strings.TrimSpace(f.Comuna),
		Date:          strings.TrimSpace(f.Date),
		TimeWindow:    strings.TrimSpace(f.TimeWindow),
		PaymentMethod: model.PaymentMethod(strings.ToLower(strings.TrimSpace(string(f.PaymentMethod)))),
		Notes:         strings.TrimSpace(f.Notes),
	}
}

// Delivery converts the form into the order payload shape.
func (f DeliveryForm) Delivery() model.DeliveryInfo {
	return model.DeliveryInfo{
		Address:    f.Address,
		Comuna:     f.Comuna,
		Date:       f.Date,
		TimeWindow: f.TimeWindow,
		Notes:      f.Notes,
	}
}

// ValidateIdentity checks the Identity stage.
func ValidateIdentity(form IdentityForm) FieldErrors {
	return structErrors(form)
}

// ValidateDelivery checks the Delivery stage. The date must be today or
// later, compared by calendar day in loc.
func ValidateDelivery(form DeliveryForm, now time.Time, loc *time.Location) FieldErrors {
	errs := structErrors(form)
	if errs == nil {
		errs = FieldErrors{}
	}

	if _, dateMissing := errs["date"]; !dateMissing {
		if msg := checkDeliveryDate(form.Date, now, loc); msg != "" {
			errs["date"] = msg
		}
	}

	if form.PaymentMethod != "" && !form.PaymentMethod.IsValid() {
		errs["paymentMethod"] = "is not a supported payment method"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func checkDeliveryDate(raw string, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	date, err := time.ParseInLocation(DateLayout, raw, loc)
	if err != nil {
		return fmt.Sprintf("must be a date in %s format", "YYYY-MM-DD")
	}
	y, m, d := now.In(loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if date.Before(today) {
		return "must be today or later"
	}
	return ""
}

func structErrors(form any) FieldErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	errs := FieldErrors{}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			errs[fe.Field()] = validationMessage(fe)
		}
		return errs
	}
	errs["form"] = err.Error()
	return errs
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "basic_email":
		return "must be a valid email address"
	case "cl_mobile":
		return "must be a Chilean mobile number (+56 9 XXXX XXXX)"
	}
	return "is invalid"
}
