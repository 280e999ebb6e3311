package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/core"
	"github.com/luminher/luminher-api/internal/middleware"
	"github.com/luminher/luminher-api/internal/models"
)

// callableRequest is the request envelope of a callable invocation.
type callableRequest struct {
	Data json.RawMessage `json:"data"`
}

// callableResponse is the success envelope of a callable invocation.
type callableResponse struct {
	Result interface{} `json:"result"`
}

// okResult is the result of operations that only report success.
type okResult struct {
	OK bool `json:"ok"`
}

// callableFunc runs one callable operation. decode fills the operation's request from
// the "data" member of the envelope.
type callableFunc func(c *gin.Context, caller *models.Caller, decode func(dst interface{}) error) (interface{}, error)

// callable adapts a callableFunc to Gin, handling both envelopes.
func callable(logger *zap.Logger, fn callableFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondCallableError(c, logger, fmt.Errorf("%w: failed to read body", core.ErrInvalidArgument))
			return
		}
		var env callableRequest
		if len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, &env); err != nil {
				respondCallableError(c, logger, fmt.Errorf("%w: body must be a JSON object with a \"data\" member", core.ErrInvalidArgument))
				return
			}
		}

		decode := func(dst interface{}) error {
			data := bytes.TrimSpace(env.Data)
			if len(data) == 0 || bytes.Equal(data, []byte("null")) {
				return nil
			}
			if err := json.Unmarshal(data, dst); err != nil {
				return fmt.Errorf("%w: malformed data: %v", core.ErrInvalidArgument, err)
			}
			return nil
		}

		result, err := fn(c, middleware.CallerFrom(c), decode)
		if err != nil {
			respondCallableError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, callableResponse{Result: result})
	}
}
