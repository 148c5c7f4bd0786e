package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grouptask-dev/grouptask/internal/services"
	"github.com/grouptask-dev/grouptask/internal/utils"
)

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type VerifyRoleRequest struct {
	Password string `json:"password"`
}

// ChangeRole switches the group's role. Elevating to Manager answers with
// confirmation_required instead of applying the change; the client follows
// up on /role/verify.
func ChangeRole(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sess, err := utils.GetCurrentSession(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req ChangeRoleRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := services.RequestRoleChange(sess, currentUser.ID, req.Role)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func VerifyRole(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sess, err := utils.GetCurrentSession(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req VerifyRoleRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	role, err := services.VerifyRolePassword(sess, currentUser.ID, req.Password)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"role": role})
}

func CancelRoleChange(ctx *gin.Context) {
	sess, err := utils.GetCurrentSession(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	services.CancelRoleChange(sess)

	ctx.Status(http.StatusNoContent)
}
