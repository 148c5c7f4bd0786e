package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/grouptask-dev/grouptask/internal/middleware"
	"github.com/grouptask-dev/grouptask/internal/session"
	"github.com/grouptask-dev/grouptask/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

func GetCurrentSession(ctx *gin.Context) (*session.Session, error) {
	value, exists := ctx.Get(types.ContextSessionKey)

	if !exists {
		return nil, fmt.Errorf("No session in context")
	}

	sess, ok := value.(*session.Session)

	if !ok {
		return nil, fmt.Errorf("Invalid session type in context")
	}

	return sess, nil
}
