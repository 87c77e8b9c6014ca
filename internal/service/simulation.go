package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog/log"

	"bistro/internal/diet"
	"bistro/internal/model"
)

// 批量运行限制
const (
	// MaxRunCount 单次同步批量模拟的安全上限
	MaxRunCount = 100
	// DefaultRunCount 默认模拟次数
	DefaultRunCount = 100
)

// DietMode 饮食来源策略，每个批次选定一次
type DietMode string

const (
	// DietModeSelf 以步骤4私下随机选定的目标饮食为准（构造上的真值）
	DietModeSelf DietMode = "self"
	// DietModeRules 以规则分类器的结果为准，无证据时回退到目标饮食
	DietModeRules DietMode = "rules"
	// DietModeLLM 以模型二次结构化分类的结果为准
	DietModeLLM DietMode = "llm"
)

// ParseDietMode 解析饮食来源策略，非法值回退到 self
func ParseDietMode(s string) DietMode {
	switch DietMode(s) {
	case DietModeSelf, DietModeRules, DietModeLLM:
		return DietMode(s)
	}
	return DietModeSelf
}

// 角色指令
const (
	waiterInstructions = "You are a restaurant waiter. Be friendly and concise. " +
		"Only write the waiter line, no role labels."
	customerInstructions = "You are a restaurant customer. Be brief and natural. " +
		"Follow the request and stay in character."
)

// favoritesSchema 步骤4结构化回复：消息、自报饮食、恰好3种最爱食物
const favoritesSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "message": {"type": "string"},
    "diet": {"type": "string", "enum": ["omnivore", "vegetarian", "vegan"]},
    "favorite_foods": {
      "type": "array",
      "items": {"type": "string"},
      "minItems": 3,
      "maxItems": 3
    }
  },
  "required": ["message", "diet", "favorite_foods"]
}`

// orderSchema 步骤6结构化回复：消息、至少1道点的菜
const orderSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "message": {"type": "string"},
    "ordered_dishes": {
      "type": "array",
      "items": {"type": "string"},
      "minItems": 1
    }
  },
  "required": ["message", "ordered_dishes"]
}`

// dietClassifySchema llm 模式的二次分类回复：饮食枚举 + 理由（理由不持久化）
const dietClassifySchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "diet": {"type": "string", "enum": ["omnivore", "vegetarian", "vegan"]},
    "justification": {"type": "string"}
  },
  "required": ["diet", "justification"]
}`

type favoritesPayload struct {
	Message       string     `json:"message"`
	Diet          model.Diet `json:"diet"`
	FavoriteFoods []string   `json:"favorite_foods"`
}

type orderPayload struct {
	Message       string   `json:"message"`
	OrderedDishes []string `json:"ordered_dishes"`
}

type dietClassifyPayload struct {
	Diet          model.Diet `json:"diet"`
	Justification string     `json:"justification"`
}

// IterationFailure 一次迭代的失败记录
type IterationFailure struct {
	Iteration int    `json:"iteration"` // 1-based
	Error     string `json:"error"`
}

// BatchResult 批量模拟结果
type BatchResult struct {
	Requested int                `json:"requested"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Failures  []IterationFailure `json:"failures,omitempty"`
}

// SimulationService 对话模拟驱动器
// 职责: 按固定6轮脚本驱动一次完整对话并原子化持久化，重复N次
type SimulationService struct {
	gen   Generator
	store TranscriptStore
}

// NewSimulationService 创建对话模拟驱动器
func NewSimulationService(gen Generator, store TranscriptStore) *SimulationService {
	return &SimulationService{gen: gen, store: store}
}

// RunBatch 运行一个批次的模拟对话
// 每次迭代独立：单次失败只回滚该次事务并记录，不中断批次
func (s *SimulationService) RunBatch(ctx context.Context, count int, mode DietMode) *BatchResult {
	log.Info().
		Int("count", count).
		Str("diet_mode", string(mode)).
		Msg("开始批量模拟对话")

	result := &BatchResult{Requested: count}
	for i := 1; i <= count; i++ {
		if err := s.runOne(ctx, i, mode); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, IterationFailure{
				Iteration: i,
				Error:     err.Error(),
			})
			log.Error().Err(err).
				Int("iteration", i).
				Int("total", count).
				Msg("对话模拟失败")
			continue
		}
		result.Succeeded++
		log.Info().
			Int("iteration", i).
			Int("total", count).
			Msg("对话模拟完成")
	}

	log.Info().
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("批量模拟结束")
	return result
}

// runOne 运行一次完整的模拟对话
// 对话行创建、6条消息插入、派生字段更新在同一事务内提交
func (s *SimulationService) runOne(ctx context.Context, iteration int, mode DietMode) error {
	return s.store.WithTransaction(ctx, func(txCtx context.Context) error {
		conv := &model.Conversation{
			CustomerLabel: fmt.Sprintf("customer_%d", iteration),
		}
		if err := s.store.CreateConversation(txCtx, conv); err != nil {
			return err
		}

		turn := 1
		appendMsg := func(role model.Role, content string) error {
			if err := s.store.AppendMessage(txCtx, conv.ID, role, content, turn); err != nil {
				return err
			}
			turn++
			return nil
		}

		// 1. 服务员问候，询问顾客今天过得如何
		waiterGreet, err := s.gen.GenerateText(ctx,
			"Greet the customer and ask if they had a good day.",
			waiterInstructions)
		if err != nil {
			return err
		}
		if err := appendMsg(model.RoleWaiter, waiterGreet); err != nil {
			return err
		}

		// 2. 顾客回答
		customerDay, err := s.gen.GenerateText(ctx,
			fmt.Sprintf("Waiter said: %s\nReply briefly about your day.", waiterGreet),
			customerInstructions)
		if err != nil {
			return err
		}
		if err := appendMsg(model.RoleCustomer, customerDay); err != nil {
			return err
		}

		// 3. 服务员询问最爱的3种食物
		waiterAskFav, err := s.gen.GenerateText(ctx,
			"Ask the customer for their top 3 favorite foods.",
			waiterInstructions)
		if err != nil {
			return err
		}
		if err := appendMsg(model.RoleWaiter, waiterAskFav); err != nil {
			return err
		}

		// 4. 顾客结构化回答：私下随机选定目标饮食，指示模型遵守但不说破
		targetDiet := randomDiet()
		var fav favoritesPayload
		favInput := fmt.Sprintf(
			"Waiter asked: %s\n"+
				"You secretly follow this diet: %s\n"+
				"Set the diet field to %q and pick exactly 3 favorite foods strictly allowed by that diet. "+
				"Do not name the diet in the message text. Return JSON only.",
			waiterAskFav, diet.RulesText[targetDiet], targetDiet)
		if err := s.gen.GenerateStructured(ctx, favInput, customerInstructions,
			favoritesSchema, "favorite_foods", &fav); err != nil {
			return err
		}
		favoriteFoods := normalizeList(fav.FavoriteFoods)
		if err := appendMsg(model.RoleCustomer, fav.Message); err != nil {
			return err
		}

		// 5. 服务员询问点什么菜
		waiterAskOrder, err := s.gen.GenerateText(ctx,
			"Ask what dishes the customer wants to order today.",
			waiterInstructions)
		if err != nil {
			return err
		}
		if err := appendMsg(model.RoleWaiter, waiterAskOrder); err != nil {
			return err
		}

		// 6. 顾客结构化点菜，保持与已声明饮食一致
		var order orderPayload
		orderInput := fmt.Sprintf(
			"Waiter asked: %s\n"+
				"Stay consistent with your diet: %s\n"+
				"Return JSON only.",
			waiterAskOrder, diet.RulesText[targetDiet])
		if err := s.gen.GenerateStructured(ctx, orderInput, customerInstructions,
			orderSchema, "order", &order); err != nil {
			return err
		}
		orderedDishes := normalizeList(order.OrderedDishes)
		if err := appendMsg(model.RoleCustomer, order.Message); err != nil {
			return err
		}

		finalDiet, err := s.finalizeDiet(ctx, mode, targetDiet, favoriteFoods, orderedDishes)
		if err != nil {
			return err
		}

		return s.store.UpdateDerived(txCtx, conv.ID, finalDiet, favoriteFoods, orderedDishes)
	})
}

// Delete 删除一次模拟对话及其全部消息
func (s *SimulationService) Delete(ctx context.Context, conversationID string) error {
	return s.store.DeleteConversation(ctx, conversationID)
}

// finalizeDiet 按选定策略决定最终饮食类型
func (s *SimulationService) finalizeDiet(ctx context.Context, mode DietMode, targetDiet model.Diet, favoriteFoods, orderedDishes []string) (model.Diet, error) {
	switch mode {
	case DietModeRules:
		if d, ok := diet.ClassifyRules(favoriteFoods, orderedDishes); ok {
			return d, nil
		}
		// 无证据时回退到目标饮食
		return targetDiet, nil

	case DietModeLLM:
		var cls dietClassifyPayload
		input := fmt.Sprintf(
			"A customer's favorite foods are: %s\n"+
				"They ordered: %s\n"+
				"Classify the customer's diet as omnivore, vegetarian or vegan "+
				"and give a short justification. Return JSON only.",
			strings.Join(favoriteFoods, ", "), strings.Join(orderedDishes, ", "))
		if err := s.gen.GenerateStructured(ctx, input, waiterInstructions,
			dietClassifySchema, "diet_classification", &cls); err != nil {
			return "", err
		}
		return cls.Diet, nil

	default: // DietModeSelf
		return targetDiet, nil
	}
}

// randomDiet 均匀随机选取目标饮食
func randomDiet() model.Diet {
	diets := model.AllDiets()
	return diets[rand.IntN(len(diets))]
}

// normalizeList 归一化字符串列表：去首尾空白、转小写、剔除空项
func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		normalized := strings.ToLower(strings.TrimSpace(item))
		if normalized == "" {
			continue
		}
		out = append(out, normalized)
	}
	return out
}
