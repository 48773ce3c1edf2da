package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func CreateError(statusCode int, title string, detail string, ctx iris.Context) {
	ctx.StatusCode(statusCode)
	ctx.JSON(iris.Map{"error": title, "message": detail})
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "server_error", "something went wrong, try again later", ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "not_found", "resource not found", ctx)
}

func CreateEmailAlreadyRegistered(ctx iris.Context) {
	CreateError(iris.StatusConflict, "email_registered", "email already registered", ctx)
}

// HandleValidationErrors converts validator errors raised by ctx.ReadJSON into a
// field-keyed payload; any other read error becomes a generic bad-request.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := make(map[string]string, len(errs))
		for _, fe := range errs {
			fields[strings.ToLower(fe.Field()[:1])+fe.Field()[1:]] = validationMessage(fe)
		}
		JSONFieldErrors(ctx, fields)
		return
	}
	CreateError(iris.StatusBadRequest, "invalid_payload", "request body could not be parsed", ctx)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	default:
		return "invalid value"
	}
}
