package api

import (
	"log"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/industryview/industryview/internal/apperr"
)

// renderError writes err as the error envelope with its mapped status.
// Internal causes are logged, never sent.
func renderError(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		log.Printf("api: %s %s [%s]: %v", c.Request.Method, c.Request.URL.Path, c.GetString("requestID"), err)
	}
	c.JSON(apperr.HTTPStatus(err), apperr.ToEnvelope(err))
}

func bindError(err error) error {
	return apperr.Validation("invalid request body", apperr.FieldError{Field: "body", Message: err.Error()})
}

// paramID parses the :id path parameter.
func paramID(c *gin.Context) (uint, error) {
	return parseID("id", c.Param("id"))
}

// queryID parses an optional numeric query parameter; 0 when absent.
func queryID(c *gin.Context, key string) (uint, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return 0, nil
	}
	return parseID(key, v)
}

func parseID(field, v string) (uint, error) {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.Validation("invalid "+field, apperr.FieldError{Field: field, Message: "must be a positive integer"})
	}
	return uint(n), nil
}

// queryInt parses an optional integer query parameter, def when absent.
func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, apperr.Validation("invalid "+key, apperr.FieldError{Field: key, Message: "must be a positive integer"})
	}
	return n, nil
}
