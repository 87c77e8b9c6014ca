package handler

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClampInt(t *testing.T) {
	Convey("clampInt 解析并夹取查询参数", t, func() {
		Convey("缺省与非法值回退到默认值", func() {
			So(clampInt("", 100, 1, 500), ShouldEqual, 100)
			So(clampInt("abc", 100, 1, 500), ShouldEqual, 100)
		})

		Convey("合法值原样返回", func() {
			So(clampInt("42", 100, 1, 500), ShouldEqual, 42)
		})

		Convey("越界值夹取到边界", func() {
			So(clampInt("0", 100, 1, 500), ShouldEqual, 1)
			So(clampInt("-7", 100, 1, 500), ShouldEqual, 1)
			So(clampInt("10000", 100, 1, 500), ShouldEqual, 500)
		})
	})
}
