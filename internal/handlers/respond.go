package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grouptask-dev/grouptask/internal/apperrors"
)

// respondError maps a service error to its HTTP shape. Errors outside the
// taxonomy are persistence failures; their details stay in the log.
func respondError(ctx *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		ctx.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(status, gin.H{"error": err.Error()})
}
