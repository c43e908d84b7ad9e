package middleware

import (
	"strings"
	"study_assistant_backend/internal/config"
	"study_assistant_backend/internal/util"
	"study_assistant_backend/pkg/logger"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SecretSource 返回当前的 JWT 签名密钥，配置热更新后会变化
type SecretSource func() string

// StaticSecret 固定密钥
func StaticSecret(secret string) SecretSource {
	return func() string { return secret }
}

// ConfigSecret 读取 holder 中最新的配置
func ConfigSecret(holder *atomic.Pointer[config.Config]) SecretSource {
	return func() string { return holder.Load().JWT.Secret }
}

func AuthMiddleware(secret SecretSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret())
		if err != nil {
			logger.Log.Debug("JWT parse failed", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}
