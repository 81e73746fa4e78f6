package input

import (
	"fmt"
	"strings"

	"github.com/vcaesar/keycode"
)

// resolveKey 规范化并校验按键名
//
// 按键名统一小写。非法按键名在动作下发前就报错，
// 避免打到一半才发现配置里的键名写错了。
func resolveKey(key string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(key))
	if name == "" {
		return "", fmt.Errorf("按键名为空")
	}

	if _, ok := keycode.Keycode[name]; ok {
		return name, nil
	}
	if _, ok := keycode.Special[name]; ok {
		return name, nil
	}
	return "", fmt.Errorf("未知按键名: %q", key)
}
