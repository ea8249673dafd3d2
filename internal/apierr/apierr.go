// Package apierr implements the error taxonomy of the HTTP surface: a
// closed set of symbolic error codes, a Gin middleware that turns
// handler-reported errors into httptypes.StandardResponse bodies, and the
// helpers handlers use to report typed failures (spec §7).
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"unicode"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"gitlab.com/arcanecrypto/noded/build/teslalog"
	"gitlab.com/arcanecrypto/noded/internal/httptypes"
)

var log = teslalog.New("APIE")

// UseLogger lets build wire in the registered subsystem logger.
func UseLogger(logger *teslalog.Logger) {
	log = logger
}

// apiError pairs a human-readable message with the symbolic code clients
// match on.
type apiError struct {
	err  error
	code string
}

func (a apiError) Error() string {
	return pkgerrors.Wrap(a.err, a.code).Error()
}

// Symbolic error codes. Adding a new variant means adding a new value here;
// existing ones are never renamed or reused.
var (
	ErrInvalidJson   = apiError{err: errors.New("invalid JSON"), code: "ERR_INVALID_JSON"}
	ErrUnknownError  = apiError{err: errors.New("unknown error"), code: "ERR_UNKNOWN_ERROR"}
	ErrRouteNotFound = apiError{err: errors.New("route not found"), code: "ERR_ROUTE_NOT_FOUND"}

	ErrMissingAuthHeader = apiError{err: errors.New("missing authentication header"), code: "ERR_MISSING_AUTH_HEADER"}
	ErrBadCredentials    = apiError{err: errors.New("invalid username or password"), code: "ERR_BAD_CREDENTIALS"}

	ErrMissingParameter = apiError{err: errors.New("missing required parameter"), code: "ERR_MISSING_PARAMETER"}
	ErrInvalidParameter = apiError{err: errors.New("invalid parameter"), code: "ERR_INVALID_PARAMETER"}
	ErrBadRequest       = apiError{err: errors.New("bad request"), code: "ERR_BAD_REQUEST"}

	ErrPaymentNotFound = apiError{err: errors.New("payment not found"), code: "ERR_PAYMENT_NOT_FOUND"}
	ErrLnurlNotFound   = apiError{err: errors.New("lnurl target not found"), code: "ERR_LNURL_NOT_FOUND"}

	ErrRequestValidationFailed = apiError{err: errors.New("request validation failed"), code: "ERR_REQUEST_VALIDATION_FAILED"}

	// ErrStateCorruption marks the fatal, never-retried class of error: a
	// decode failure, or an inconsistent set of nullable DB columns.
	ErrStateCorruption = apiError{err: errors.New("persisted state is corrupt"), code: "ERR_STATE_CORRUPTION"}
)

// decapitalize makes the first rune of a string lowercase.
func decapitalize(str string) string {
	if str == "" {
		return ""
	}
	r := []rune(str)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// GetMiddleware returns a Gin middleware that renders any error attached to
// the context as a httptypes.StandardResponse, choosing an HTTP status per
// spec §7's taxonomy.
func GetMiddleware(log *teslalog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// if HTTP code is set to -1 it doesn't overwrite what's already there
		httpCode := -1
		if c.Writer.Status() == http.StatusOK {
			httpCode = http.StatusInternalServerError
		}

		fieldErrors := handleValidationErrors(c, log)
		response := httptypes.StandardResponse{
			Error: &httptypes.StandardError{
				Fields: fieldErrors,
			},
		}

		for _, err := range c.Errors {
			var syntaxErr *json.SyntaxError
			if errors.Is(err.Err, io.EOF) || errors.As(err.Err, &syntaxErr) {
				response.Error.Code = ErrInvalidJson.code
				response.Error.Message = ErrInvalidJson.err.Error()
				c.JSON(httpCode, response)
				return
			}
		}

		publicErrors := c.Errors.ByType(gin.ErrorTypePublic)
		if len(publicErrors) > 0 {
			err := publicErrors.Last()
			if apiErr, ok := err.Err.(apiError); ok {
				response.Error.Code = apiErr.code
				response.Error.Message = apiErr.err.Error()
			} else {
				log.WithError(err).Warn("got public error that was not an apiError")
				response.Error.Code = ErrUnknownError.code
				response.Error.Message = ErrUnknownError.err.Error()
			}
		}

		if response.Error.Code == "" {
			if len(fieldErrors) > 0 {
				response.Error.Code = ErrRequestValidationFailed.code
				response.Error.Message = ErrRequestValidationFailed.err.Error()
			} else {
				response.Error.Code = ErrUnknownError.code
				response.Error.Message = ErrUnknownError.err.Error()
			}
		}

		c.JSON(httpCode, response)
	}
}

// Public fails the given request with err, marking it as safe to show to
// the caller.
func Public(c *gin.Context, status int, err apiError) {
	cErr := c.AbortWithError(status, err)
	_ = cErr.SetType(gin.ErrorTypePublic)
}

// MissingParameter reports the 400 produced when a required parameter was
// not supplied.
func MissingParameter(c *gin.Context, name string) {
	Public(c, http.StatusBadRequest, apiError{
		err:  fmt.Errorf("missing required parameter %q", decapitalize(name)),
		code: ErrMissingParameter.code,
	})
}

// InvalidParameter reports the 400 produced when a parameter could not be
// coerced to its expected type.
func InvalidParameter(c *gin.Context, name string, expectedType string) {
	Public(c, http.StatusBadRequest, apiError{
		err:  fmt.Errorf("parameter %q is not a valid %s", decapitalize(name), expectedType),
		code: ErrInvalidParameter.code,
	})
}

// Internal reports an unhandled internal error as a 500, logging the
// underlying cause (which is never shown to the caller).
func Internal(c *gin.Context, err error) {
	log.WithError(err).Error("unhandled internal error")
	cErr := c.AbortWithError(http.StatusInternalServerError, err)
	_ = cErr.SetType(gin.ErrorTypePrivate)
}

// StateCorruption reports the fatal, non-retried class of error produced by
// a decode failure or an inconsistent nullable-column combination read back
// from the store.
func StateCorruption(c *gin.Context, err error) {
	log.WithError(err).Error("state corruption detected")
	Public(c, http.StatusInternalServerError, apiError{err: err, code: ErrStateCorruption.code})
}

const unknownValidationTag = "unknown"

func handleValidationErrors(c *gin.Context, log *teslalog.Logger) []httptypes.FieldError {
	fieldErrors := []httptypes.FieldError{}
	for _, err := range c.Errors.ByType(gin.ErrorTypeBind) {
		if numError, ok := err.Err.(*strconv.NumError); ok {
			fieldErrors = append(fieldErrors, httptypes.FieldError{
				Field:   unknownValidationTag,
				Message: fmt.Sprintf("%q is not a valid number, %q failed", numError.Num, numError.Func),
				Code:    "invalid-number",
			})
			continue
		}
	}
	return fieldErrors
}
