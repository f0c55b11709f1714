// Package validation registers the custom binding tags used by request DTOs.
package validation

import (
	"errors"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// TagMobile validates mainland China mobile numbers.
const TagMobile = "mobile"

var mobilePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

// IsMobile reports whether s is an 11-digit mainland mobile number.
func IsMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

func mobile(fl validator.FieldLevel) bool {
	return IsMobile(fl.Field().String())
}

// Register adds the custom tags to gin's default validator engine.
// 複数回呼ばれても問題ない。
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return RegisterOn(v)
}

// RegisterOn adds the custom tags to v.
func RegisterOn(v *validator.Validate) error {
	return v.RegisterValidation(TagMobile, mobile)
}
