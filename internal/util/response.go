package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes a 200 JSON body with success=true plus the given fields.
func Success(c *gin.Context, data gin.H) {
	respond(c, http.StatusOK, data)
}

// Created writes a 201 JSON body with success=true plus the given fields.
func Created(c *gin.Context, data gin.H) {
	respond(c, http.StatusCreated, data)
}

func respond(c *gin.Context, status int, data gin.H) {
	out := gin.H{"success": true}
	for k, v := range data {
		out[k] = v
	}
	c.JSON(status, out)
}

// Error writes the uniform error body. Every failure in the API surfaces as
// {"error": message} with an HTTP status; there are no structured codes.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
