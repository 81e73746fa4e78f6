package input

import (
	"fmt"
	"math"
	"time"

	"github.com/nzbot/nzbot/internal/logger"
)

// 闭环绝对定位参数
const (
	moveMaxIters  = 20                   // 最大迭代次数
	moveTolerance = 2                    // 认为到位的误差（像素）
	moveMaxStep   = 200                  // 单次相对位移上限
	moveSettle    = 8 * time.Millisecond // 每次位移后的等待
)

// RelativeBackend 只用相对位移的输入后端
//
// 全屏独占的游戏里系统级绝对光标定位会被忽略，而且游戏可能对相对
// 位移做了加速度映射，发出 dx 实际移动的距离不等于 dx。所以绝对
// 定位用闭环实现：每轮读一次真实光标位置，按剩余误差发一小步相对
// 位移，逐步收敛。步长随迭代递减，避免加速度曲线下的来回振荡。
type RelativeBackend struct {
	inner Backend

	// sleep 测试中可替换
	sleep func(time.Duration)
}

// NewRelativeBackend 把一个输入后端包装为纯相对定位的后端
func NewRelativeBackend(inner Backend) *RelativeBackend {
	return &RelativeBackend{
		inner: inner,
		sleep: time.Sleep,
	}
}

// MoveAbsolute 闭环迭代移动到绝对坐标
func (b *RelativeBackend) MoveAbsolute(x, y int) error {
	for i := 0; i < moveMaxIters; i++ {
		cx, cy := b.inner.CursorPos()
		ex, ey := x-cx, y-cy
		if abs(ex) <= moveTolerance && abs(ey) <= moveTolerance {
			return nil
		}

		div := stepDivisor(i)
		dx := clampStep(ex, div)
		dy := clampStep(ey, div)
		if err := b.inner.MoveRelative(dx, dy); err != nil {
			return fmt.Errorf("相对移动失败: %w", err)
		}
		b.sleep(moveSettle)
	}

	cx, cy := b.inner.CursorPos()
	logger.Warn("光标定位未收敛: 目标 (%d,%d) 实际 (%d,%d)", x, y, cx, cy)
	return nil
}

func (b *RelativeBackend) MoveRelative(dx, dy int) error  { return b.inner.MoveRelative(dx, dy) }
func (b *RelativeBackend) MouseDown(button string) error  { return b.inner.MouseDown(button) }
func (b *RelativeBackend) MouseUp(button string) error    { return b.inner.MouseUp(button) }
func (b *RelativeBackend) KeyDown(key string) error       { return b.inner.KeyDown(key) }
func (b *RelativeBackend) KeyUp(key string) error         { return b.inner.KeyUp(key) }
func (b *RelativeBackend) Scroll(dir string, n int) error { return b.inner.Scroll(dir, n) }
func (b *RelativeBackend) CursorPos() (int, int)          { return b.inner.CursorPos() }

// stepDivisor 前几轮衰减大避免加速度下超调，后期衰减小加快收敛
func stepDivisor(iter int) float64 {
	switch {
	case iter < 3:
		return 3.0
	case iter < 6:
		return 2.5
	case iter < 10:
		return 2.0
	default:
		return 1.5
	}
}

// clampStep 计算一步位移：误差除以衰减系数取整，限幅，最小保证 1 像素
func clampStep(err int, div float64) int {
	step := int(math.Round(float64(err) / div))
	if step == 0 && err != 0 {
		if err > 0 {
			step = 1
		} else {
			step = -1
		}
	}
	if step > moveMaxStep {
		step = moveMaxStep
	}
	if step < -moveMaxStep {
		step = -moveMaxStep
	}
	return step
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
