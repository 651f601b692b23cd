package book

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	isbn10Pattern = regexp.MustCompile(`^\d{9}[\dX]$`)
	isbn13Pattern = regexp.MustCompile(`^\d{13}$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("isbn", validateISBN)
	return v
}

// validateISBN accepts ISBN-10 and ISBN-13, ignoring hyphens and spaces.
func validateISBN(fl validator.FieldLevel) bool {
	isbn := strings.NewReplacer("-", "", " ", "").Replace(fl.Field().String())
	switch len(isbn) {
	case 10:
		return isbn10Pattern.MatchString(isbn)
	case 13:
		return isbn13Pattern.MatchString(isbn)
	}
	return false
}

// ValidISBN reports whether isbn is a well formed ISBN-10 or ISBN-13.
func ValidISBN(isbn string) bool {
	return validate.Var(isbn, "required,isbn") == nil
}
