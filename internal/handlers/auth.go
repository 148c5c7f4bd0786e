package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/grouptask-dev/grouptask/internal/apperrors"
	"github.com/grouptask-dev/grouptask/internal/auth"
	"github.com/grouptask-dev/grouptask/internal/models"
	"github.com/grouptask-dev/grouptask/internal/services"
	"github.com/grouptask-dev/grouptask/internal/session"
	"github.com/grouptask-dev/grouptask/internal/types"
	"github.com/grouptask-dev/grouptask/internal/utils"
)

type SignupRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	ManagerPassword string `json:"manager_password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var (
	Domain = os.Getenv("DOMAIN")
)

func Signup(ctx *gin.Context) {
	var req SignupRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := services.SignupUser(services.SignupInput{
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		ManagerPassword: req.ManagerPassword,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	token, err := establishSession(ctx, user)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user": types.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	})
}

func Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := services.AuthenticateUser(req.Username, req.Password)

	if err != nil {
		var authErr *apperrors.AuthError

		if errors.As(err, &authErr) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": authErr.Message})
			return
		}

		respondError(ctx, err)
		return
	}

	token, err := establishSession(ctx, user)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": types.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	})
}

func Logout(ctx *gin.Context) {
	if sess, err := utils.GetCurrentSession(ctx); err == nil {
		session.Active.Delete(sess.Token)
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Domain:   Domain,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:       currentUser.ID,
			Username: currentUser.Username,
			Role:     currentUser.Role,
		},
	})
}

// establishSession issues the JWT, registers the server-side session and
// sets the auth cookie.
func establishSession(ctx *gin.Context, user *models.User) (string, error) {
	token, err := auth.GenerateJWT(user.ID, user.Username)

	if err != nil {
		return "", err
	}

	session.Active.GetOrCreate(token, user.ID, user.Username)

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Domain:   Domain,
		MaxAge:   60 * 60 * 24 * 7,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})

	return token, nil
}
