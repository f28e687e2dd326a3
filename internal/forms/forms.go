// Package forms holds the input shapes accepted by page and API handlers and
// validates them with go-playground/validator.
package forms

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/bookstore/internal/models"
)

var ErrValidation = errors.New("validation failed")

// ValidationError carries one message per offending field, keyed by the
// field's form name.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a single-field ValidationError.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	// bcrypt reads at most 72 bytes, and max= counts runes.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})
	return v
}

type RegisterForm struct {
	Username string `form:"username" json:"username" validate:"required,min=3,max=50"`
	Email    string `form:"email"    json:"email"    validate:"required,email,max=120"`
	Password string `form:"password" json:"password" validate:"required,min=6,maxbytes=72"`
}

type LoginForm struct {
	Email    string `form:"email"    json:"email"    validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

type BookForm struct {
	Title       string   `form:"title"       json:"title"       validate:"required,max=100"`
	Author      string   `form:"author"      json:"author"      validate:"required,max=100"`
	Price       *float64 `form:"price"       json:"price"       validate:"required,gte=0"`
	Description *string  `form:"description" json:"description"`
	CoverImage  *string  `form:"cover_image" json:"cover_image" validate:"omitempty,max=200"`
	Stock       *int     `form:"stock"       json:"stock"       validate:"omitempty,gte=0"`
}

// StockOrDefault returns the submitted stock or models.DefaultStock when the
// field was left out.
func (f BookForm) StockOrDefault() int {
	if f.Stock == nil {
		return models.DefaultStock
	}
	return *f.Stock
}

type StatusForm struct {
	Status string `form:"status" json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

type CheckoutItem struct {
	BookID   uint `json:"book_id"  validate:"required"`
	Quantity int  `json:"quantity" validate:"gt=0"`
}

type CheckoutForm struct {
	Items []CheckoutItem `json:"items" validate:"required,min=1,dive"`
}

// Merged folds repeated book ids into one line, keeping first-seen order.
// Quantities must already be positive; a sum that would overflow is reported
// against the line that pushed it over.
func (f CheckoutForm) Merged() ([]CheckoutItem, error) {
	idx := make(map[uint]int, len(f.Items))
	out := make([]CheckoutItem, 0, len(f.Items))
	for k, it := range f.Items {
		if i, ok := idx[it.BookID]; ok {
			if it.Quantity > math.MaxInt-out[i].Quantity {
				return nil, Invalid(fmt.Sprintf("items[%d].quantity", k), "is too large")
			}
			out[i].Quantity += it.Quantity
			continue
		}
		idx[it.BookID] = len(out)
		out = append(out, it)
	}
	return out, nil
}

// Normalize trims surrounding whitespace from user-typed text fields.
func (f *RegisterForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
}

func (f *LoginForm) Normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

func (f *BookForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Author = strings.TrimSpace(f.Author)
	if f.CoverImage != nil {
		s := strings.TrimSpace(*f.CoverImage)
		if s == "" {
			f.CoverImage = nil
		} else {
			f.CoverImage = &s
		}
	}
	if f.Description != nil && strings.TrimSpace(*f.Description) == "" {
		f.Description = nil
	}
}

func (f *StatusForm) Normalize() {
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
}

type normalizer interface{ Normalize() }

// Validate normalizes and checks a form. Validation failures come back as
// *ValidationError; anything else is a programming error and is returned as is.
func Validate(form any) error {
	if n, ok := form.(normalizer); ok {
		n.Normalize()
	}
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	return mapValidationErrors(ve)
}

func mapValidationErrors(errs validator.ValidationErrors) *ValidationError {
	out := &ValidationError{Fields: make(map[string]string, len(errs))}
	for _, e := range errs {
		name := fieldPath(e)
		if _, seen := out.Fields[name]; seen {
			continue
		}
		out.Fields[name] = message(e)
	}
	return out
}

// fieldPath drops the root struct name from the namespace, so nested fields
// read as items[0].quantity.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if e.Kind() == reflect.Slice {
			return "must contain at least " + e.Param() + " item(s)"
		}
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "maxbytes":
		return "must be at most " + e.Param() + " bytes"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
