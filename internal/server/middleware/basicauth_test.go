package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"bistro/internal/config"
	"bistro/internal/pkg/password"
)

func newAuthRouter(cfg *config.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", BasicAuth(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func doRequest(r *gin.Engine, username, pass string, withCreds bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if withCreds {
		req.SetBasicAuth(username, pass)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBasicAuth(t *testing.T) {
	Convey("BasicAuth 中间件校验凭据", t, func() {
		cfg := &config.AuthConfig{Username: "admin", Password: "secret"}
		r := newAuthRouter(cfg)

		Convey("凭据正确时放行", func() {
			w := doRequest(r, "admin", "secret", true)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("密码错误时返回401并带认证质询头", func() {
			w := doRequest(r, "admin", "wrong", true)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Header().Get("WWW-Authenticate"), ShouldEqual, `Basic realm="api"`)
		})

		Convey("用户名错误时返回401", func() {
			w := doRequest(r, "nobody", "secret", true)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("缺少认证头时返回401", func() {
			w := doRequest(r, "", "", false)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Header().Get("WWW-Authenticate"), ShouldEqual, `Basic realm="api"`)
		})
	})

	Convey("配置中的密码可以是 bcrypt 哈希", t, func() {
		hash, err := password.Hash("secret")
		So(err, ShouldBeNil)

		r := newAuthRouter(&config.AuthConfig{Username: "admin", Password: hash})

		Convey("明文密码与哈希匹配时放行", func() {
			w := doRequest(r, "admin", "secret", true)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("不匹配时返回401", func() {
			w := doRequest(r, "admin", "wrong", true)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})
	})

	Convey("未配置凭据时一律拒绝", t, func() {
		r := newAuthRouter(&config.AuthConfig{})

		w := doRequest(r, "", "", true)
		So(w.Code, ShouldEqual, http.StatusUnauthorized)
	})
}
