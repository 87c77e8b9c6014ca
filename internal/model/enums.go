package model

// Diet 顾客饮食类型
type Diet string

const (
	DietOmnivore   Diet = "omnivore"   // 杂食
	DietVegetarian Diet = "vegetarian" // 素食（允许蛋奶）
	DietVegan      Diet = "vegan"      // 纯素
)

// String 返回饮食类型的字符串表示
func (d Diet) String() string {
	return string(d)
}

// Valid 判断是否为三种固定枚举值之一
func (d Diet) Valid() bool {
	switch d {
	case DietOmnivore, DietVegetarian, DietVegan:
		return true
	}
	return false
}

// AllDiets 固定枚举顺序（统计输出按此顺序）
func AllDiets() []Diet {
	return []Diet{DietOmnivore, DietVegetarian, DietVegan}
}

// Role 消息角色
type Role string

const (
	RoleWaiter   Role = "waiter"   // 服务员
	RoleCustomer Role = "customer" // 顾客
)

// String 返回角色的字符串表示
func (r Role) String() string {
	return string(r)
}
