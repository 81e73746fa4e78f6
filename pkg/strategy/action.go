package strategy

import "fmt"

// 动作类型（type 字段取值）
const (
	ActionPressKey     = "PressKey"     // 按住按键 duration 秒后释放
	ActionTapKey       = "TapKey"       // 敲击按键
	ActionKeyDown      = "KeyDown"      // 按下不放
	ActionKeyUp        = "KeyUp"        // 释放
	ActionSendRelative = "SendRelative" // 相对移动光标（转视角）
	ActionSleep        = "Sleep"        // 等待 duration 秒
	ActionClick        = "Click"        // 当前位置左键单击
	ActionMoveTo       = "MoveTo"       // 移动光标到绝对坐标
	ActionClickAt      = "ClickAt"      // 移动后左键单击
)

// ActionStep 移动阶段中的一步动作
//
// 序列化为内嵌 type 标签的 JSON 对象，各字段按 Type 取用，
// 未用到的字段省略。
type ActionStep struct {
	Type string `json:"type"`

	Key string `json:"key,omitempty"`
	// Duration 秒
	Duration float64 `json:"duration,omitempty"`
	Dx       int     `json:"dx,omitempty"`
	Dy       int     `json:"dy,omitempty"`
	X        int     `json:"x,omitempty"`
	Y        int     `json:"y,omitempty"`
}

// Validate 校验动作字段完整性
func (a *ActionStep) Validate() error {
	switch a.Type {
	case ActionPressKey:
		if a.Key == "" || a.Duration <= 0 {
			return fmt.Errorf("PressKey 需要 key 和正的 duration")
		}
	case ActionTapKey, ActionKeyDown, ActionKeyUp:
		if a.Key == "" {
			return fmt.Errorf("%s 需要 key", a.Type)
		}
	case ActionSendRelative:
		if a.Dx == 0 && a.Dy == 0 {
			return fmt.Errorf("SendRelative 的 dx/dy 不能同时为 0")
		}
	case ActionSleep:
		if a.Duration <= 0 {
			return fmt.Errorf("Sleep 需要正的 duration")
		}
	case ActionClick, ActionMoveTo, ActionClickAt:
		// 坐标 0,0 合法，不做检查
	default:
		return fmt.Errorf("未知动作类型: %q", a.Type)
	}
	return nil
}
