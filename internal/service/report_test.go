package service

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"bistro/internal/model"
)

func TestTopFoodsByDiet(t *testing.T) {
	Convey("TopFoodsByDiet 按饮食类型统计食物频次", t, func() {
		Convey("同一饮食桶内按出现次数降序", func() {
			rows := []model.DietFoods{
				{Diet: model.DietVegan, FavoriteFoods: []string{"tofu", "rice"}},
				{Diet: model.DietVegan, FavoriteFoods: []string{"tofu", "kale"}},
				{Diet: model.DietVegan, FavoriteFoods: []string{"tofu", "rice"}},
			}

			top := TopFoodsByDiet(rows, 10)

			So(top[model.DietVegan], ShouldHaveLength, 3)
			So(top[model.DietVegan][0], ShouldResemble, FoodCount{Food: "tofu", Count: 3})
			So(top[model.DietVegan][1], ShouldResemble, FoodCount{Food: "rice", Count: 2})
			So(top[model.DietVegan][2], ShouldResemble, FoodCount{Food: "kale", Count: 1})
		})

		Convey("计数相同时保持首次出现顺序", func() {
			rows := []model.DietFoods{
				{Diet: model.DietOmnivore, FavoriteFoods: []string{"steak", "sushi", "ramen"}},
			}

			top := TopFoodsByDiet(rows, 10)

			So(top[model.DietOmnivore], ShouldResemble, []FoodCount{
				{Food: "steak", Count: 1},
				{Food: "sushi", Count: 1},
				{Food: "ramen", Count: 1},
			})
		})

		Convey("topN 截断排行", func() {
			rows := []model.DietFoods{
				{Diet: model.DietVegan, FavoriteFoods: []string{"a", "b", "c", "d"}},
			}

			top := TopFoodsByDiet(rows, 2)

			So(top[model.DietVegan], ShouldHaveLength, 2)
		})

		Convey("食物名大小写与空白归一化后合并计数", func() {
			rows := []model.DietFoods{
				{Diet: model.DietVegetarian, FavoriteFoods: []string{" Cheese Pizza ", "cheese pizza"}},
			}

			top := TopFoodsByDiet(rows, 10)

			So(top[model.DietVegetarian], ShouldResemble, []FoodCount{
				{Food: "cheese pizza", Count: 2},
			})
		})

		Convey("未知饮食值与空白食物被跳过", func() {
			rows := []model.DietFoods{
				{Diet: model.Diet("pescatarian"), FavoriteFoods: []string{"salmon"}},
				{Diet: model.DietVegan, FavoriteFoods: []string{"", "  "}},
			}

			top := TopFoodsByDiet(rows, 10)

			So(top[model.DietVegan], ShouldBeEmpty)
			So(top[model.DietOmnivore], ShouldBeEmpty)
			So(top, ShouldHaveLength, 3)
		})

		Convey("无数据时三种饮食桶都存在且为空", func() {
			top := TopFoodsByDiet(nil, 10)

			So(top, ShouldHaveLength, 3)
			for _, d := range model.AllDiets() {
				So(top[d], ShouldBeEmpty)
			}
		})
	})
}

func TestReportService_Dashboard(t *testing.T) {
	ctx := context.Background()

	Convey("Dashboard 组装最近对话、分组计数与食物排行", t, func() {
		store := &fakeStore{}
		So(store.CreateConversation(ctx, &model.Conversation{CustomerLabel: "customer_1"}), ShouldBeNil)
		conv := store.convs[0]
		So(store.AppendMessage(ctx, conv.ID, model.RoleWaiter, "hello", 1), ShouldBeNil)
		So(store.AppendMessage(ctx, conv.ID, model.RoleCustomer, "hi", 2), ShouldBeNil)
		So(store.UpdateDerived(ctx, conv.ID, model.DietVegan, []string{"tofu", "rice", "kale"}, []string{"soup"}), ShouldBeNil)

		svc := NewReportService(store, nil)
		data, err := svc.Dashboard(ctx)

		So(err, ShouldBeNil)
		So(data.Latest, ShouldHaveLength, 1)
		So(data.Latest[0].Messages, ShouldHaveLength, 2)
		So(data.DietCounts[model.DietVegan], ShouldEqual, 1)
		So(data.DietCounts[model.DietOmnivore], ShouldEqual, 0)
		So(data.TopFoods[model.DietVegan], ShouldHaveLength, 3)
	})
}

func TestReportService_VegetarianSummary(t *testing.T) {
	ctx := context.Background()

	Convey("VegetarianSummary 只返回 vegetarian 与 vegan 的对话", t, func() {
		store := &fakeStore{}
		for _, d := range []model.Diet{model.DietOmnivore, model.DietVegetarian, model.DietVegan} {
			conv := &model.Conversation{CustomerLabel: "customer"}
			So(store.CreateConversation(ctx, conv), ShouldBeNil)
			So(store.UpdateDerived(ctx, conv.ID, d, nil, nil), ShouldBeNil)
		}

		svc := NewReportService(store, nil)
		convs, err := svc.VegetarianSummary(ctx)

		So(err, ShouldBeNil)
		So(convs, ShouldHaveLength, 2)
		for _, c := range convs {
			So(c.Diet, ShouldBeIn, model.DietVegetarian, model.DietVegan)
		}
	})
}
