package diet

import (
	"regexp"
	"strings"

	"bistro/internal/model"
)

// meatKeywords 肉类/海鲜信号词
var meatKeywords = keywordSet(
	"beef", "pork", "lamb", "veal", "ham", "bacon", "sausage", "steak",
	"turkey", "chicken", "duck", "fish", "salmon", "tuna", "cod", "trout",
	"shrimp", "prawn", "crab", "lobster", "anchovy",
)

// animalProductKeywords 蛋奶/蜂蜜信号词
var animalProductKeywords = keywordSet(
	"cheese", "milk", "butter", "cream", "yogurt", "egg", "eggs", "honey",
)

// RulesText 各饮食类型的提示词规则描述
var RulesText = map[model.Diet]string{
	model.DietVegan:      "Vegan: no meat, fish, dairy, eggs, or honey.",
	model.DietVegetarian: "Vegetarian: no meat or fish; dairy and eggs allowed.",
	model.DietOmnivore:   "Omnivore: any foods allowed.",
}

// tokenRE 提取单词 token（Unicode 字母/数字/下划线/撇号的最长连续串）
var tokenRE = regexp.MustCompile(`[\p{L}\p{N}_']+`)

// ClassifyRules 基于关键词规则推断饮食类型
// 纯函数：对两组自由文本取并集 token 后匹配关键词集
// 优先级是硬性要求：肉类信号 > 蛋奶信号 > 纯植物默认
// token 集为空时返回 ok=false（"无证据"），调用方必须自行回退，不得默认猜测
func ClassifyRules(favoriteFoods, orderedDishes []string) (model.Diet, bool) {
	tokens := collectTokens(favoriteFoods)
	for t := range collectTokens(orderedDishes) {
		tokens[t] = struct{}{}
	}
	if len(tokens) == 0 {
		return "", false
	}
	if intersects(tokens, meatKeywords) {
		return model.DietOmnivore, true
	}
	if intersects(tokens, animalProductKeywords) {
		return model.DietVegetarian, true
	}
	return model.DietVegan, true
}

// tokenize 将文本归一化为小写单词 token 集
func tokenize(text string) map[string]struct{} {
	cleaned := strings.ReplaceAll(text, "-", " ") // 拆开连字符词
	tokens := make(map[string]struct{})
	for _, t := range tokenRE.FindAllString(strings.ToLower(cleaned), -1) {
		tokens[t] = struct{}{}
	}
	return tokens
}

// collectTokens 聚合一组输入的全部 token，空白项跳过
func collectTokens(items []string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		for t := range tokenize(item) {
			tokens[t] = struct{}{}
		}
	}
	return tokens
}

func intersects(tokens, keywords map[string]struct{}) bool {
	for t := range tokens {
		if _, ok := keywords[t]; ok {
			return true
		}
	}
	return false
}

func keywordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
