package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"healthcompanion/internal/store"
)

const accessDeniedDetail = "Insufficient role for this action"

var errAccessDenied = errors.New("insufficient role for this action")

// canActFor applies the access rule: elderly users act on themselves only,
// caregivers may act on any username.
func canActFor(actor AuthUser, username string) bool {
	if strings.EqualFold(strings.TrimSpace(username), actor.Username) {
		return true
	}
	return actor.Role == store.RoleCaregiver
}

// targetUsername resolves the username a request acts on. An empty request
// value means the caller.
func targetUsername(actor AuthUser, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return actor.Username, nil
	}
	if !canActFor(actor, requested) {
		return "", errAccessDenied
	}
	return requested, nil
}

// loadTargetUser resolves and loads the target user, writing the error
// response itself when it returns false.
func (a *App) loadTargetUser(c *gin.Context, requested string) (store.User, bool) {
	actor, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Authentication required")
		return store.User{}, false
	}
	username, err := targetUsername(actor, requested)
	if err != nil {
		writeError(c, http.StatusForbidden, accessDeniedDetail)
		return store.User{}, false
	}
	if username == actor.Username {
		return store.User{ID: actor.ID, Username: actor.Username, Role: actor.Role, FullName: actor.FullName}, true
	}

	user, err := a.store.GetUserByUsername(c.Request.Context(), username)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "User not found")
		return store.User{}, false
	}
	if err != nil {
		a.log.WithComponent("server").WithError(err).Error("load user failed")
		writeError(c, http.StatusInternalServerError, "Failed to load user")
		return store.User{}, false
	}
	return user, true
}

func (a *App) me(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username":  user.Username,
		"full_name": user.FullName,
		"role":      user.Role,
	})
}
