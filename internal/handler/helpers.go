package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/igor-spalenza/GesN-sub003/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			reasons := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				reasons = append(reasons, fe.Field()+": "+fe.Tag())
			}
			c.JSON(http.StatusUnprocessableEntity, apierror.Validation(reasons))
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// bindQuery binds query-string filters and runs validator tags on them.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if err := validate.Struct(filter); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			reasons := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				reasons = append(reasons, fe.Field()+": "+fe.Tag())
			}
			c.JSON(http.StatusUnprocessableEntity, apierror.Validation(reasons))
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// statusFor maps error kinds to HTTP statuses. Unknown errors are 500 with a
// generic body; the real cause stays in the server log.
func statusFor(err error) int {
	var e *apierror.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case apierror.KindNotFound:
		return http.StatusNotFound
	case apierror.KindDuplicateKey, apierror.KindConflict, apierror.KindCircularDependency:
		return http.StatusConflict
	case apierror.KindValidationFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the mapped status with the business error body.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err) // surfaced by the error-logging middleware
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	var e *apierror.Error
	errors.As(err, &e)
	c.JSON(status, e)
}

// uuidParam parses a uuid path parameter, writing 400 on garbage.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
