package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/wanbao-hr/agency-api/pkg/errors"
)

// BindJSON binds and validates a request body, converting validator failures
// into the structured details array the clients expect on a 400.
func BindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, fieldError(fe))
			}
			return apperrors.Validation("request validation failed", details)
		}
		return apperrors.BadRequest("malformed request body", err)
	}
	return nil
}

func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: required", field)
	case "datetime":
		return fmt.Sprintf("%s: must be a YYYY-MM-DD date", field)
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s: must be a UUID", field)
	default:
		return fmt.Sprintf("%s: invalid (%s)", field, fe.Tag())
	}
}
