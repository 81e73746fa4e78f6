package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DEBUG,
		"INFO":    INFO,
		"warning": WARN,
		"error":   ERROR,
		"未知":      INFO,
	}
	for s, want := range cases {
		if got := ParseLevel(s); got != want {
			t.Errorf("ParseLevel(%q) = %v, 期望 %v", s, got, want)
		}
	}
}

func TestLevelFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")

	l := New()
	l.SetConsole(false)
	if err := l.SetFile(true, path); err != nil {
		t.Fatalf("打开日志文件失败: %v", err)
	}
	l.SetLevel(WARN)

	l.Info("不应出现")
	l.Warn("应出现")
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取日志失败: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "不应出现") {
		t.Error("低于级别的日志不应写入")
	}
	if !strings.Contains(content, "应出现") {
		t.Error("达到级别的日志应写入")
	}
}

func TestLogEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")

	l := New()
	l.SetConsole(false)
	if err := l.SetFile(true, path); err != nil {
		t.Fatalf("打开日志文件失败: %v", err)
	}

	l.LogEvent("OCR", true, 123.4, "识别到 3 个文本")
	l.LogEvent("OCR", false, 5.0, "识别失败")
	l.Close()

	data, _ := os.ReadFile(path)
	content := string(data)
	if !strings.Contains(content, "OK") || !strings.Contains(content, "NG") {
		t.Errorf("事件日志缺少状态标记: %s", content)
	}
}
