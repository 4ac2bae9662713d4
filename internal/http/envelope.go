package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// respond emite el sobre uniforme {code, status, description, ...payload}.
func respond(c *gin.Context, code int, description string, payload ...gin.H) {
	body := gin.H{
		"code":        code,
		"status":      statusText(code),
		"description": description,
	}
	for _, p := range payload {
		for k, v := range p {
			body[k] = v
		}
	}
	c.JSON(code, body)
}

func statusText(code int) string {
	if code >= 200 && code < 300 {
		return "Success"
	}
	return http.StatusText(code)
}
