package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	. "github.com/smartystreets/goconvey/convey"

	"bistro/internal/model"
	"bistro/internal/pkg/id"
)

// fakeGenerator 按 schema 名称返回预置 JSON 的文本生成器
type fakeGenerator struct {
	textCalls int

	favorites string // favorite_foods 回复
	order     string // order 回复
	classify  string // diet_classification 回复

	failSchema    string // 命中该 schema 名称时返回错误
	favCalls      int
	failOnFavCall int // 1-based，0 表示从不失败
}

func (g *fakeGenerator) GenerateText(_ context.Context, _, _ string) (string, error) {
	g.textCalls++
	return fmt.Sprintf("line %d", g.textCalls), nil
}

func (g *fakeGenerator) GenerateStructured(_ context.Context, _, _, _, name string, out any) error {
	if name == g.failSchema {
		return errors.New("generation failed")
	}

	var payload string
	switch name {
	case "favorite_foods":
		g.favCalls++
		if g.failOnFavCall != 0 && g.favCalls == g.failOnFavCall {
			return errors.New("generation failed")
		}
		payload = g.favorites
	case "order":
		payload = g.order
	case "diet_classification":
		payload = g.classify
	default:
		return fmt.Errorf("unexpected schema %q", name)
	}
	return sonic.Unmarshal([]byte(payload), out)
}

// fakeStore 内存版转录存储，事务失败时整体回滚
type fakeStore struct {
	convs []*model.Conversation
	msgs  []*model.Message
}

func (s *fakeStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	convs := slices.Clone(s.convs)
	msgs := slices.Clone(s.msgs)
	if err := fn(ctx); err != nil {
		s.convs = convs
		s.msgs = msgs
		return err
	}
	return nil
}

func (s *fakeStore) CreateConversation(_ context.Context, conv *model.Conversation) error {
	if conv.ID == "" {
		conv.ID = id.New()
	}
	if conv.Diet == "" {
		conv.Diet = model.DietOmnivore
	}
	conv.CreatedAt = time.Now()
	s.convs = append(s.convs, conv)
	return nil
}

func (s *fakeStore) AppendMessage(_ context.Context, conversationID string, role model.Role, content string, turnIndex int) error {
	n := 0
	for _, m := range s.msgs {
		if m.ConversationID == conversationID {
			n++
		}
	}
	if turnIndex != n+1 {
		return fmt.Errorf("turn_index %d out of sequence, want %d", turnIndex, n+1)
	}
	s.msgs = append(s.msgs, &model.Message{
		ID:             id.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		TurnIndex:      turnIndex,
		CreatedAt:      time.Now(),
	})
	return nil
}

func (s *fakeStore) UpdateDerived(_ context.Context, conversationID string, diet model.Diet, favoriteFoods, orderedDishes []string) error {
	if !diet.Valid() {
		return fmt.Errorf("invalid diet value: %q", diet)
	}
	for _, c := range s.convs {
		if c.ID == conversationID {
			c.Diet = diet
			c.FavoriteFoods = favoriteFoods
			c.OrderedDishes = orderedDishes
			return nil
		}
	}
	return fmt.Errorf("conversation %s not found", conversationID)
}

func (s *fakeStore) DeleteConversation(_ context.Context, conversationID string) error {
	s.convs = slices.DeleteFunc(s.convs, func(c *model.Conversation) bool {
		return c.ID == conversationID
	})
	s.msgs = slices.DeleteFunc(s.msgs, func(m *model.Message) bool {
		return m.ConversationID == conversationID
	})
	return nil
}

func (s *fakeStore) ListLatest(_ context.Context, limit int64) ([]*model.Conversation, error) {
	out := slices.Clone(s.convs)
	slices.Reverse(out)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) FindByDiets(_ context.Context, diets []model.Diet) ([]*model.Conversation, error) {
	var out []*model.Conversation
	for _, c := range s.convs {
		if slices.Contains(diets, c.Diet) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) CountByDiet(_ context.Context) (map[model.Diet]int64, error) {
	counts := make(map[model.Diet]int64)
	for _, c := range s.convs {
		counts[c.Diet]++
	}
	return counts, nil
}

func (s *fakeStore) DietFoodRows(_ context.Context) ([]model.DietFoods, error) {
	rows := make([]model.DietFoods, 0, len(s.convs))
	for _, c := range s.convs {
		rows = append(rows, model.DietFoods{Diet: c.Diet, FavoriteFoods: c.FavoriteFoods})
	}
	return rows, nil
}

func (s *fakeStore) FindMessages(_ context.Context, conversationID string) ([]*model.Message, error) {
	var out []*model.Message
	for _, m := range s.msgs {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		favorites: `{"message": "I love sushi!", "diet": "omnivore", "favorite_foods": ["  Sushi ", "Ramen", "tempura"]}`,
		order:     `{"message": "The salmon, please.", "ordered_dishes": ["Grilled Salmon", " rice "]}`,
		classify:  `{"diet": "vegetarian", "justification": "no meat mentioned"}`,
	}
}

func TestSimulationService_RunBatch(t *testing.T) {
	ctx := context.Background()

	Convey("单次模拟生成完整的6轮对话", t, func() {
		gen := newFakeGenerator()
		store := &fakeStore{}
		svc := NewSimulationService(gen, store)

		result := svc.RunBatch(ctx, 1, DietModeSelf)

		So(result.Requested, ShouldEqual, 1)
		So(result.Succeeded, ShouldEqual, 1)
		So(result.Failed, ShouldEqual, 0)
		So(store.convs, ShouldHaveLength, 1)
		So(store.msgs, ShouldHaveLength, 6)

		conv := store.convs[0]
		So(conv.CustomerLabel, ShouldEqual, "customer_1")
		So(conv.Diet.Valid(), ShouldBeTrue)

		Convey("消息按轮次1-6连续编号，服务员先说话且角色交替", func() {
			for i, msg := range store.msgs {
				So(msg.ConversationID, ShouldEqual, conv.ID)
				So(msg.TurnIndex, ShouldEqual, i+1)
				if i%2 == 0 {
					So(msg.Role, ShouldEqual, model.RoleWaiter)
				} else {
					So(msg.Role, ShouldEqual, model.RoleCustomer)
				}
			}
		})

		Convey("派生字段被归一化（去空白、小写）", func() {
			So(conv.FavoriteFoods, ShouldResemble, []string{"sushi", "ramen", "tempura"})
			So(conv.OrderedDishes, ShouldResemble, []string{"grilled salmon", "rice"})
		})
	})

	Convey("结构化步骤失败时整次迭代回滚，不留半截对话", t, func() {
		Convey("最爱食物步骤失败", func() {
			gen := newFakeGenerator()
			gen.failSchema = "favorite_foods"
			store := &fakeStore{}
			svc := NewSimulationService(gen, store)

			result := svc.RunBatch(ctx, 1, DietModeSelf)

			So(result.Succeeded, ShouldEqual, 0)
			So(result.Failed, ShouldEqual, 1)
			So(store.convs, ShouldBeEmpty)
			So(store.msgs, ShouldBeEmpty)
		})

		Convey("点菜步骤失败", func() {
			gen := newFakeGenerator()
			gen.failSchema = "order"
			store := &fakeStore{}
			svc := NewSimulationService(gen, store)

			result := svc.RunBatch(ctx, 1, DietModeSelf)

			So(result.Failed, ShouldEqual, 1)
			So(store.convs, ShouldBeEmpty)
			So(store.msgs, ShouldBeEmpty)
		})
	})

	Convey("批次内单次失败不中断其余迭代", t, func() {
		gen := newFakeGenerator()
		gen.failOnFavCall = 2
		store := &fakeStore{}
		svc := NewSimulationService(gen, store)

		result := svc.RunBatch(ctx, 3, DietModeSelf)

		So(result.Requested, ShouldEqual, 3)
		So(result.Succeeded, ShouldEqual, 2)
		So(result.Failed, ShouldEqual, 1)
		So(result.Failures, ShouldHaveLength, 1)
		So(result.Failures[0].Iteration, ShouldEqual, 2)
		So(store.convs, ShouldHaveLength, 2)
		So(store.msgs, ShouldHaveLength, 12)
	})

	Convey("rules 模式下最终饮食由关键词分类器决定", t, func() {
		gen := newFakeGenerator()
		gen.favorites = `{"message": "Chicken all the way.", "diet": "vegan", "favorite_foods": ["grilled chicken", "rice", "apple"]}`
		store := &fakeStore{}
		svc := NewSimulationService(gen, store)

		result := svc.RunBatch(ctx, 1, DietModeRules)

		So(result.Succeeded, ShouldEqual, 1)
		So(store.convs[0].Diet, ShouldEqual, model.DietOmnivore)
	})

	Convey("rules 模式无证据时回退到目标饮食而非报错", t, func() {
		gen := newFakeGenerator()
		gen.favorites = `{"message": "Hmm.", "diet": "omnivore", "favorite_foods": ["  ", "", " "]}`
		gen.order = `{"message": "Nothing yet.", "ordered_dishes": [" "]}`
		store := &fakeStore{}
		svc := NewSimulationService(gen, store)

		result := svc.RunBatch(ctx, 1, DietModeRules)

		So(result.Succeeded, ShouldEqual, 1)
		So(store.convs[0].Diet.Valid(), ShouldBeTrue)
	})

	Convey("llm 模式下最终饮食来自二次分类", t, func() {
		gen := newFakeGenerator()
		store := &fakeStore{}
		svc := NewSimulationService(gen, store)

		result := svc.RunBatch(ctx, 1, DietModeLLM)

		So(result.Succeeded, ShouldEqual, 1)
		So(store.convs[0].Diet, ShouldEqual, model.DietVegetarian)
	})
}

func TestParseDietMode(t *testing.T) {
	Convey("ParseDietMode 解析饮食来源策略", t, func() {
		So(ParseDietMode("self"), ShouldEqual, DietModeSelf)
		So(ParseDietMode("rules"), ShouldEqual, DietModeRules)
		So(ParseDietMode("llm"), ShouldEqual, DietModeLLM)

		Convey("非法值与空值回退到 self", func() {
			So(ParseDietMode(""), ShouldEqual, DietModeSelf)
			So(ParseDietMode("bogus"), ShouldEqual, DietModeSelf)
		})
	})
}

func TestNormalizeList(t *testing.T) {
	Convey("normalizeList 归一化字符串列表", t, func() {
		So(normalizeList([]string{" Sushi ", "RAMEN", ""}), ShouldResemble, []string{"sushi", "ramen"})
		So(normalizeList(nil), ShouldBeEmpty)
	})
}
