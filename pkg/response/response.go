package response

import (
	"net/http"

	"github.com/ahmadrazza2001/backend-trynbuy/pkg/errs"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Body    interface{} `json:"body,omitempty"`
}

type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
}

type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

func WriteSuccessResponse(c echo.Context, message string, data interface{}) error {
	return writeSuccess(c, http.StatusOK, message, data)
}

func WriteCreatedResponse(c echo.Context, message string, data interface{}) error {
	return writeSuccess(c, http.StatusCreated, message, data)
}

func writeSuccess(c echo.Context, statusCode int, message string, data interface{}) error {
	resp := SuccessResponse{}
	resp.Status = StatusSuccess
	resp.Body = data
	resp.Message = message

	return c.JSON(statusCode, resp)
}

// WriteErrorResponse maps err to its HTTP status. Errors outside the errs
// taxonomy are logged and answered with the generic internal error message.
func WriteErrorResponse(c echo.Context, err error, errors interface{}) error {
	known, ok := errs.Known(err)
	if !ok {
		log.Ctx(c.Request().Context()).Error().Err(err).Str("component", "WriteErrorResponse").Msg("unhandled error")
		known = errs.ErrInternalServer
	}

	resp := ErrorResponse{}
	resp.Status = StatusFailed
	resp.Message = known.Error()
	resp.Errors = errors

	return c.JSON(errs.GetErrorStatusCode(known), resp)
}
