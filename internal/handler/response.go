package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/petchlovefamily/clinic-system/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(code apperrors.ErrorCode, message string) *Response {
	return &Response{
		Status:  "error",
		Code:    string(code),
		Message: message,
	}
}

// RespondError renders any error as its typed JSON failure. Unexpected
// errors collapse to INTERNAL without leaking detail; the error middleware
// logs the cause.
func RespondError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	c.Error(err)
	c.AbortWithStatusJSON(appErr.StatusCode(), NewErrorResponse(appErr.Code, appErr.Message))
}

// RespondBindError turns request binding failures into VALIDATION errors,
// unpacking field-level messages when the cause is a validator error.
func RespondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag()))
		}
		RespondError(c, apperrors.NewValidation(strings.Join(msgs, "; "), err))
		return
	}
	RespondError(c, apperrors.NewValidation("malformed request body", err))
}
