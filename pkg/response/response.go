package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/clinsight/biomed-admin-api/pkg/errors"
)

// Envelope represents the common response contract. Errors carry the message
// under the "error" key so browser clients can surface it directly.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error string                 `json:"error,omitempty"`
	Code  string                 `json:"code,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr.Message, Code: appErr.Code})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
