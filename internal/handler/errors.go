package handler

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"Community_Feed/internal/middleware"
	"Community_Feed/internal/pkg"
)

var registerTagNames sync.Once

// useJSONFieldNames 让校验错误里的字段名与请求体的 json 字段名一致
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
}

// bindJSON 绑定失败时直接写 400 并返回 false
func bindJSON(c *gin.Context, req any) bool {
	useJSONFieldNames()
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) *pkg.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return pkg.Validation("non_field_errors", "Invalid request body.")
	}
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
	}
	return pkg.ValidationFields(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	default:
		return "Invalid value."
	}
}

func statusOf(kind pkg.Kind) int {
	switch kind {
	case pkg.KindValidation, pkg.KindConflict, pkg.KindInvalidOperation:
		return http.StatusBadRequest
	case pkg.KindAuthentication:
		return http.StatusUnauthorized
	case pkg.KindPermission:
		return http.StatusForbidden
	case pkg.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError 业务错误按 Kind 映射状态码，其余错误记录日志后返回 500
func writeError(c *gin.Context, err error) {
	var e *pkg.Error
	if !errors.As(err, &e) {
		middleware.LoggerFrom(c).ErrorContext(c.Request.Context(), "internal error",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"err", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if e.Kind == pkg.KindValidation && len(e.Fields) > 0 {
		c.JSON(http.StatusBadRequest, e.Fields)
		return
	}
	c.JSON(statusOf(e.Kind), gin.H{"error": e.Message})
}
