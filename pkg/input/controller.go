package input

import (
	"fmt"
	"time"

	"github.com/nzbot/nzbot/internal/logger"
)

const (
	tapDuration = 50 * time.Millisecond  // 单次敲击的按住时长
	clickSettle = 100 * time.Millisecond // 移动后等待光标到位再点击
	tapGap      = 100 * time.Millisecond // 连续敲击之间的间隔
)

// 按键动作类型
const (
	KeyOpDown = "down" // 按下并保持
	KeyOpUp   = "up"   // 释放
	KeyOpTap  = "tap"  // 敲击（按下-等待-释放）
)

// KeyAction 按键序列中的一步
type KeyAction struct {
	Key string
	Op  string
	// Duration Op 为 tap 时的按住时长，0 使用默认值
	Duration time.Duration
	// Count Op 为 tap 时的连续敲击次数，0 视为 1，每次间隔 100ms
	Count int
}

// Controller 输入控制门面
//
// 封装常用的组合动作（敲击、定点点击、方向移动、按键序列），
// 所有动作都走注入的 Backend，测试中可替换为记录型桩实现。
type Controller struct {
	backend Backend

	// sleep 测试中可替换
	sleep func(time.Duration)
}

// NewController 创建输入控制器
func NewController(backend Backend) *Controller {
	return &Controller{
		backend: backend,
		sleep:   time.Sleep,
	}
}

// Backend 返回底层后端
func (c *Controller) Backend() Backend {
	return c.backend
}

// TapKey 敲击按键
func (c *Controller) TapKey(key string) error {
	return c.PressKey(key, tapDuration)
}

// PressKey 按住按键指定时长后释放
//
// 阻塞直到释放完成。无论中途是否出错都保证释放已按下的键。
func (c *Controller) PressKey(key string, duration time.Duration) error {
	if err := c.backend.KeyDown(key); err != nil {
		return err
	}
	c.sleep(duration)
	return c.backend.KeyUp(key)
}

// KeyDown 按下按键
func (c *Controller) KeyDown(key string) error {
	return c.backend.KeyDown(key)
}

// KeyUp 释放按键
func (c *Controller) KeyUp(key string) error {
	return c.backend.KeyUp(key)
}

// LeftClick 在当前位置左键单击
func (c *Controller) LeftClick() error {
	return c.clickButton("left")
}

// RightClick 在当前位置右键单击
func (c *Controller) RightClick() error {
	return c.clickButton("right")
}

func (c *Controller) clickButton(button string) error {
	if err := c.backend.MouseDown(button); err != nil {
		return err
	}
	c.sleep(tapDuration)
	return c.backend.MouseUp(button)
}

// MoveTo 移动光标到绝对坐标
func (c *Controller) MoveTo(x, y int) error {
	return c.backend.MoveAbsolute(x, y)
}

// ClickAt 移动到指定位置后左键单击
func (c *Controller) ClickAt(x, y int) error {
	if err := c.backend.MoveAbsolute(x, y); err != nil {
		return err
	}
	c.sleep(clickSettle)
	return c.LeftClick()
}

// Scroll 沿指定方向滚动 count 次，每次间隔 interval
func (c *Controller) Scroll(direction string, count int, interval time.Duration) error {
	for i := 0; i < count; i++ {
		if err := c.backend.Scroll(direction, 1); err != nil {
			return fmt.Errorf("滚动失败: %w", err)
		}
		if i < count-1 {
			c.sleep(interval)
		}
	}
	return nil
}

// MoveLeft 光标向左相对移动
func (c *Controller) MoveLeft(pixels int) error { return c.backend.MoveRelative(-pixels, 0) }

// MoveRight 光标向右相对移动
func (c *Controller) MoveRight(pixels int) error { return c.backend.MoveRelative(pixels, 0) }

// MoveUp 光标向上相对移动
func (c *Controller) MoveUp(pixels int) error { return c.backend.MoveRelative(0, -pixels) }

// MoveDown 光标向下相对移动
func (c *Controller) MoveDown(pixels int) error { return c.backend.MoveRelative(0, pixels) }

// MoveRelative 光标相对移动
func (c *Controller) MoveRelative(dx, dy int) error { return c.backend.MoveRelative(dx, dy) }

// RunKeySequence 顺序执行按键序列
//
// down 动作按下的键在序列结束时统一释放，即使中途出错也会释放，
// 避免把移动键卡在按下状态。序列内部不检查停止信号，整段要么
// 完整执行要么出错返回，停止判断由调用方在序列之间做。
func (c *Controller) RunKeySequence(actions []KeyAction) (err error) {
	held := make([]string, 0, 4)
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			if upErr := c.backend.KeyUp(held[i]); upErr != nil && err == nil {
				err = upErr
			}
		}
	}()

	for _, action := range actions {
		switch action.Op {
		case KeyOpDown:
			if err = c.backend.KeyDown(action.Key); err != nil {
				return err
			}
			held = append(held, action.Key)
		case KeyOpUp:
			if err = c.backend.KeyUp(action.Key); err != nil {
				return err
			}
			held = removeKey(held, action.Key)
		case KeyOpTap:
			d := action.Duration
			if d <= 0 {
				d = tapDuration
			}
			count := action.Count
			if count < 1 {
				count = 1
			}
			for j := 0; j < count; j++ {
				if err = c.PressKey(action.Key, d); err != nil {
					return err
				}
				if j < count-1 {
					c.sleep(tapGap)
				}
			}
		default:
			return fmt.Errorf("未知按键动作: %q", action.Op)
		}
	}
	return nil
}

// ReleaseKeys 释放一组按键，逐个尽力而为
//
// 用于停止时的兜底清理，单个键释放失败只记日志不中断。
func (c *Controller) ReleaseKeys(keys []string) {
	for _, key := range keys {
		if err := c.backend.KeyUp(key); err != nil {
			logger.Warn("释放按键 %s 失败: %v", key, err)
		}
	}
}

func removeKey(held []string, key string) []string {
	out := held[:0]
	for _, k := range held {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}
