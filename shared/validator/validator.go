package validator

import (
	"courtside/config"
	"courtside/shared/constant"
	"courtside/shared/failure"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"time"

	val "github.com/go-playground/validator/v10"
)

const defaultMobilePattern = `^(0|\+84)(3|5|7|8|9)[0-9]{8}$`

var validate *val.Validate

func mobileValidation(pattern *regexp.Regexp) val.Func {
	return func(fl val.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}
}

func dateValidation(fl val.FieldLevel) bool {
	_, err := time.Parse(constant.DateOnlyFormat, fl.Field().String())

	return err == nil
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return field.Name
	}

	return name
}

func init() {
	cfg := config.Get()

	pattern := cfg.Booking.MobilePattern
	if pattern == "" {
		pattern = defaultMobilePattern
	}

	mobile, err := regexp.Compile(pattern)
	if err != nil {
		panic(fmt.Errorf("invalid mobile pattern: %w", err))
	}

	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	if err = validate.RegisterValidation("mobile", mobileValidation(mobile)); err != nil {
		panic(err)
	}

	if err = validate.RegisterValidation("date", dateValidation); err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("empty", func(fl val.FieldLevel) bool {
		return fl.Field().IsZero()
	})
	if err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	if err := Decode(r, data); err != nil {
		return err
	}

	return ValidateStruct(data)
}

// Decode only reads the JSON body. Use it when fields must be filled from the request context before ValidateStruct.
func Decode[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}
