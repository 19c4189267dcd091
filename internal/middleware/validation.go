package middleware

import (
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/barberhq/booking-api/internal/model"
)

// RegisterValidators installs the custom binding validators and makes
// validation errors report json field names instead of Go field names.
// Call once before the engine starts serving.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	if err := v.RegisterValidation("bookdate", validBookingDate); err != nil {
		panic(err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

// validBookingDate accepts calendar dates in the wire format, e.g.
// "2026-09-01". Time-of-day labels are validated downstream because ad
// hoc slot labels are allowed.
func validBookingDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.DateLayout, fl.Field().String())
	return err == nil
}
