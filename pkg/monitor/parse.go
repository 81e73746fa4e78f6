package monitor

import (
	"strconv"
	"strings"
)

// digitsOf 提取字符串中的全部数字字符
//
// OCR 对小号数字经常混入杂字符（"$3,999,600"、"波次2"、"3.979,600"），
// 统一只保留数字再解析。
func digitsOf(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseWaveNumber 从识别文字中解析波次编号
func parseWaveNumber(text string) (uint32, bool) {
	digits := digitsOf(text)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// parseGold 从识别文字中解析金币数
func parseGold(text string) (int64, bool) {
	digits := digitsOf(text)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
