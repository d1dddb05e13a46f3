package layout

import "strings"

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// MaxRoman 是可编号的最大章节序号。
const MaxRoman = 3999

// ToRoman 把 1..3999 转成罗马数字，越界返回 ConfigError。
func ToRoman(n int) (string, error) {
	if n < 1 || n > MaxRoman {
		return "", ConfigError("roman", "章节编号 %d 超出罗马数字范围 1-%d", n, MaxRoman)
	}
	var b strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String(), nil
}
