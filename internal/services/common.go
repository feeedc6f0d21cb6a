package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"neelosewa/internal/domain"
	"neelosewa/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct reports the first failing field as a ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.ValidationError{Field: fe.Field(), Msg: validationMsg(fe), Err: err}
	}
	return domain.ValidationError{Msg: "invalid request", Err: err}
}

func validationMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "email":
		return "must be a valid email"
	case "min":
		return "must have at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "is invalid"
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ValidationError{Field: field, Msg: "is required"}
	}
	return nil
}

// internalErr passes business-rule errors through untouched. Anything else is
// logged with its context and replaced by an InternalError that carries no
// detail to the caller.
func internalErr(ctx context.Context, op string, fields logrus.Fields, err error) error {
	if err == nil || domain.IsBusinessRule(err) {
		return err
	}
	entry := utils.Logger().WithFields(fields).WithField("op", op).WithField("request_id", utils.RequestIDFrom(ctx))
	entry.WithError(err).Error("operation failed")
	if domain.IsInternal(err) {
		return err
	}
	return domain.InternalError{Msg: op + " failed", Err: err}
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c != nil {
		return c()
	}
	return utils.NowUTC()
}

type idSource func() string

func (f idSource) next() string {
	if f != nil {
		return f()
	}
	return uuid.NewString()
}

func validationDate(field string, err error) error {
	return domain.ValidationError{Field: field, Msg: "must be a date in YYYY-MM-DD format", Err: err}
}
