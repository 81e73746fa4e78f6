// Package input 提供鼠标、键盘输入的统一抽象
//
// 上层（策略执行、动作脚本）只依赖 Backend 接口和 Controller 门面，
// 不直接接触 robotgo。全屏独占的游戏会忽略系统级的绝对光标移动，
// 只认相对位移，所以这里同时提供绝对后端和相对后端两种实现。
package input

// Backend 输入后端接口
//
// 实现不要求并发安全，所有调用由 Controller 串行化。
type Backend interface {
	// MoveAbsolute 把光标移动到屏幕绝对坐标
	MoveAbsolute(x, y int) error
	// MoveRelative 按相对位移移动光标
	MoveRelative(dx, dy int) error
	// MouseDown 按下鼠标按键（"left" / "right"）
	MouseDown(button string) error
	// MouseUp 释放鼠标按键
	MouseUp(button string) error
	// KeyDown 按下键盘按键
	KeyDown(key string) error
	// KeyUp 释放键盘按键
	KeyUp(key string) error
	// Scroll 沿指定方向滚动（"up" / "down"）
	Scroll(direction string, lines int) error
	// CursorPos 返回当前光标位置
	CursorPos() (x, y int)
}
