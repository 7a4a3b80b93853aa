package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Data writes the success envelope {"success": true, "data": data}. Extra keys are merged
// at the top level (pagination, message).
func Data(c *gin.Context, status int, data interface{}, extra gin.H) {
	body := gin.H{"success": true, "data": data}
	for k, v := range extra {
		if k == "success" || k == "data" {
			continue
		}
		body[k] = v
	}
	JSON(c, status, body)
}
