package handler

import "strconv"

// clampInt 解析查询参数并夹取到 [min, max]，非法或缺省时用 def
func clampInt(raw string, def, min, max int) int {
	n := def
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			n = parsed
		}
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
