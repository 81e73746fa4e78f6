package input

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// RobotBackend 基于 robotgo 的系统输入后端
//
// 适用于窗口化运行的游戏：绝对移动直接调用系统光标定位。
type RobotBackend struct{}

// NewRobotBackend 创建系统输入后端
func NewRobotBackend() *RobotBackend {
	return &RobotBackend{}
}

func (b *RobotBackend) MoveAbsolute(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (b *RobotBackend) MoveRelative(dx, dy int) error {
	robotgo.MoveRelative(dx, dy)
	return nil
}

func (b *RobotBackend) MouseDown(button string) error {
	if err := robotgo.Toggle(button, "down"); err != nil {
		return fmt.Errorf("按下鼠标 %s 失败: %w", button, err)
	}
	return nil
}

func (b *RobotBackend) MouseUp(button string) error {
	if err := robotgo.Toggle(button, "up"); err != nil {
		return fmt.Errorf("释放鼠标 %s 失败: %w", button, err)
	}
	return nil
}

func (b *RobotBackend) KeyDown(key string) error {
	resolved, err := resolveKey(key)
	if err != nil {
		return err
	}
	if err := robotgo.KeyToggle(resolved, "down"); err != nil {
		return fmt.Errorf("按下按键 %s 失败: %w", key, err)
	}
	return nil
}

func (b *RobotBackend) KeyUp(key string) error {
	resolved, err := resolveKey(key)
	if err != nil {
		return err
	}
	if err := robotgo.KeyToggle(resolved, "up"); err != nil {
		return fmt.Errorf("释放按键 %s 失败: %w", key, err)
	}
	return nil
}

func (b *RobotBackend) Scroll(direction string, lines int) error {
	robotgo.ScrollDir(lines, direction)
	return nil
}

func (b *RobotBackend) CursorPos() (int, int) {
	return robotgo.Location()
}
