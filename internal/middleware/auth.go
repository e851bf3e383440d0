package middleware

import (
	"errors"
	"strings"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/service"
	"edconnect_backend/internal/util"
	"edconnect_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// AuthMiddleware 接受 Authorization: Bearer 或会话 cookie
func AuthMiddleware(auth *service.AuthService, store sessions.Store, sessionName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var claims *util.Claims

		if token := bearerToken(c); token != "" {
			parsed, err := auth.Authenticate(c.Request.Context(), token)
			if err != nil {
				if !errors.Is(err, util.ErrTokenRevoked) {
					logger.Log.Debug("JWT rejected", zap.Error(err))
				}
				util.Unauthorized(c)
				c.Abort()
				return
			}
			claims = parsed
		} else if session, err := store.Get(c.Request, sessionName); err == nil {
			if id, ok := session.Values[SessionUserKey].(uint); ok && id != 0 {
				claims = &util.Claims{UserID: id}
			}
		}

		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		user, err := auth.GetUser(claims.UserID)
		if err != nil {
			if !errors.Is(err, util.ErrUserNotFound) {
				logger.Log.Error("Failed to load authenticated user", zap.Uint("userId", claims.UserID), zap.Error(err))
			}
			util.Unauthorized(c)
			c.Abort()
			return
		}
		claims.Role = user.Role

		c.Set(util.ContextUserKey, claims)
		c.Set(util.ContextActorKey, user)
		c.Next()
	}
}

// RoleMiddleware 管理员拥有所有角色的权限
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := user.Role == model.Admin
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
