package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"healthcompanion/internal/auth"
	"healthcompanion/internal/store"
)

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *App) signup(c *gin.Context) {
	var payload signupRequest
	if !mustJSON(c, &payload) {
		return
	}
	username := strings.TrimSpace(payload.Username)
	if username == "" || payload.Password == "" {
		writeError(c, http.StatusBadRequest, "username and password are required")
		return
	}
	role, ok := store.NormalizeRole(payload.Role)
	if !ok {
		writeError(c, http.StatusBadRequest, "role must be elderly or caregiver")
		return
	}

	hash, err := a.passwords.Hash(payload.Password)
	if err != nil {
		a.log.WithComponent("auth").WithError(err).Error("hash password failed")
		writeError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := store.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		FullName:     strings.TrimSpace(payload.FullName),
	}
	if err := a.store.CreateUser(c.Request.Context(), &user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(c, http.StatusBadRequest, "Username already exists")
			return
		}
		a.log.WithComponent("auth").WithError(err).Error("create user failed")
		writeError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	a.log.WithUser(user.Username).WithField("role", user.Role).Info("user signed up")
	c.JSON(http.StatusCreated, gin.H{
		"message":  "User created successfully",
		"username": user.Username,
	})
}

func (a *App) login(c *gin.Context) {
	var payload loginRequest
	if !mustJSON(c, &payload) {
		return
	}

	user, err := a.store.GetUserByUsername(c.Request.Context(), strings.TrimSpace(payload.Username))
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		a.log.WithComponent("auth").WithError(err).Error("load login user failed")
		writeError(c, http.StatusInternalServerError, "Failed to load user")
		return
	}

	ok, err := a.passwords.Verify(user.PasswordHash, payload.Password)
	if err != nil {
		a.log.WithUser(user.Username).WithError(err).Warn("stored password hash is unreadable")
	}
	if !ok {
		writeError(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := a.tokens.Issue(auth.Claims{
		Username: user.Username,
		Role:     user.Role,
		FullName: user.FullName,
	})
	if err != nil {
		a.log.WithComponent("auth").WithError(err).Error("issue token failed")
		writeError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":     user.Username,
		"full_name":    user.FullName,
		"role":         user.Role,
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int64(a.tokens.TTL().Seconds()),
	})
}
