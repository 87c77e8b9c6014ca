package service

import (
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"bistro/internal/model"
)

func TestExportService_BuildCSV(t *testing.T) {
	Convey("BuildCSV 生成固定列序的导出文件", t, func() {
		svc := NewExportService(nil)
		created := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		convs := []*model.Conversation{
			{
				ID:            "abc-123",
				CustomerLabel: "customer_1",
				Diet:          model.DietVegan,
				FavoriteFoods: []string{"tofu", "rice", "kale"},
				OrderedDishes: []string{"soup"},
				CreatedAt:     created,
			},
		}

		data, err := svc.BuildCSV(convs)
		So(err, ShouldBeNil)

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		So(lines, ShouldHaveLength, 2)
		So(lines[0], ShouldEqual, "id,created_at,customer_label,diet,favorite_foods,ordered_dishes")

		Convey("列表字段用 | 拼接，时间为 RFC3339", func() {
			So(lines[1], ShouldEqual, "abc-123,2026-08-30T12:00:00Z,customer_1,vegan,tofu|rice|kale,soup")
		})
	})

	Convey("空列表只输出表头", t, func() {
		svc := NewExportService(nil)
		data, err := svc.BuildCSV(nil)
		So(err, ShouldBeNil)
		So(strings.TrimSpace(string(data)), ShouldEqual, "id,created_at,customer_label,diet,favorite_foods,ordered_dishes")
	})

	Convey("未配置归档存储时 Archive 返回明确错误", t, func() {
		svc := NewExportService(nil)
		So(svc.Enabled(), ShouldBeFalse)

		_, err := svc.Archive(t.Context(), []byte("id\n"))
		So(err, ShouldEqual, ErrArchiveDisabled)
	})
}
