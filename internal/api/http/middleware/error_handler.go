package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apitypes "github.com/weisyn/oreminer/internal/api/types"
	infralog "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
)

// ErrorHandler 把 handler 通过 c.Error 记录的错误统一写成 problem+json
func ErrorHandler(logger infralog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		problem, ok := apitypes.IsProblemDetails(err)
		if !ok {
			logger.Errorf("handler 返回了非 ProblemDetails 错误: path=%s err=%v", c.Request.URL.Path, err)
			problem = apitypes.NewProblemDetails(
				apitypes.CodeInternalError,
				"服务器内部错误",
				fmt.Sprintf("internal error: %v", err),
				http.StatusInternalServerError,
			)
		}
		problem.Instance = c.Request.URL.Path
		c.Header("Content-Type", "application/problem+json")
		c.AbortWithStatusJSON(problem.Status, problem)
	}
}
