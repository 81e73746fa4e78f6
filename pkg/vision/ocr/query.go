package ocr

import (
	"strings"

	"github.com/xrash/smetrics"
)

// FindText 在识别结果中模糊查找指定文字
//
// 使用 Jaro-Winkler 相似度（共同前缀权重更高），返回相似度达到
// threshold 的第一条结果；没有则返回 nil。结果顺序即输入顺序，
// 上游不保证特定排序，调用方不应依赖并列时的先后关系。
func FindText(results []OcrResultItem, target string, threshold float64) *OcrResultItem {
	for i := range results {
		if smetrics.JaroWinkler(results[i].Text, target, 0.7, 4) >= threshold {
			return &results[i]
		}
	}
	return nil
}

// FindTextContains 在识别结果中查找包含指定子串的第一条结果
func FindTextContains(results []OcrResultItem, target string) *OcrResultItem {
	for i := range results {
		if strings.Contains(results[i].Text, target) {
			return &results[i]
		}
	}
	return nil
}
