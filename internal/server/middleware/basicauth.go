package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"bistro/internal/config"
	"bistro/internal/pkg/password"
)

// BasicAuth HTTP Basic 认证中间件
// 配置中的密码既可以是明文（常数时间比较）也可以是 bcrypt 哈希
// 未配置凭据时所有请求一律拒绝
func BasicAuth(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, pass, ok := c.Request.BasicAuth()
		if !ok || !credentialsValid(cfg, username, pass) {
			c.Header("WWW-Authenticate", `Basic realm="api"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    40101,
				"message": "Unauthorized",
			})
			return
		}

		c.Next()
	}
}

func credentialsValid(cfg *config.AuthConfig, username, pass string) bool {
	if cfg.Username == "" || cfg.Password == "" {
		return false
	}

	userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.Username))

	var passMatch int
	if password.IsHash(cfg.Password) {
		if password.Verify(pass, cfg.Password) {
			passMatch = 1
		}
	} else {
		passMatch = subtle.ConstantTimeCompare([]byte(pass), []byte(cfg.Password))
	}

	// 用 & 避免短路，两项比较总是都执行
	return userMatch&passMatch == 1
}
