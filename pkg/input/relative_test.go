package input

import (
	"testing"
	"time"
)

func newTestRelative(inner Backend) *RelativeBackend {
	b := NewRelativeBackend(inner)
	b.sleep = func(time.Duration) {}
	return b
}

func TestMoveAbsoluteConverges(t *testing.T) {
	inner := &fakeBackend{x: 0, y: 0}
	b := newTestRelative(inner)

	if err := b.MoveAbsolute(500, 300); err != nil {
		t.Fatalf("移动失败: %v", err)
	}

	if abs(inner.x-500) > moveTolerance || abs(inner.y-300) > moveTolerance {
		t.Errorf("未收敛到目标: 实际 (%d,%d)", inner.x, inner.y)
	}
}

func TestMoveAbsoluteConvergesWithAcceleration(t *testing.T) {
	// 模拟游戏的指针加速度：实际位移是发出位移的 2 倍
	inner := &fakeBackend{x: 100, y: 900, gain: 2.0}
	b := newTestRelative(inner)

	if err := b.MoveAbsolute(960, 540); err != nil {
		t.Fatalf("移动失败: %v", err)
	}

	if abs(inner.x-960) > moveTolerance || abs(inner.y-540) > moveTolerance {
		t.Errorf("加速度下未收敛: 实际 (%d,%d)", inner.x, inner.y)
	}
}

func TestMoveAbsoluteAlreadyAtTarget(t *testing.T) {
	inner := &fakeBackend{x: 50, y: 60}
	b := newTestRelative(inner)

	if err := b.MoveAbsolute(51, 61); err != nil {
		t.Fatalf("移动失败: %v", err)
	}
	if len(inner.events) != 0 {
		t.Errorf("误差在容差内不应发出位移: %v", inner.events)
	}
}

func TestStepDivisorSchedule(t *testing.T) {
	cases := []struct {
		iter int
		want float64
	}{
		{0, 3.0}, {2, 3.0},
		{3, 2.5}, {5, 2.5},
		{6, 2.0}, {9, 2.0},
		{10, 1.5}, {19, 1.5},
	}
	for _, c := range cases {
		if got := stepDivisor(c.iter); got != c.want {
			t.Errorf("第 %d 轮衰减系数应为 %.1f, 实际 %.1f", c.iter, c.want, got)
		}
	}
}

func TestClampStep(t *testing.T) {
	cases := []struct {
		err  int
		div  float64
		want int
	}{
		{1000, 3.0, 200},   // 限幅
		{-1000, 3.0, -200}, // 负向限幅
		{2, 3.0, 1},        // 最小 1 像素
		{-2, 3.0, -1},
		{0, 3.0, 0},
		{300, 3.0, 100},
		{5, 3.0, 2}, // 四舍五入而非截断
		{-5, 3.0, -2},
		{7, 2.0, 4},
	}
	for _, c := range cases {
		if got := clampStep(c.err, c.div); got != c.want {
			t.Errorf("clampStep(%d, %.1f) = %d, 期望 %d", c.err, c.div, got, c.want)
		}
	}
}

func TestResolveKey(t *testing.T) {
	if key, err := resolveKey("W"); err != nil || key != "w" {
		t.Errorf("按键名应规范化为小写: %q, %v", key, err)
	}
	if _, err := resolveKey("f9"); err != nil {
		t.Errorf("功能键应合法: %v", err)
	}
	if _, err := resolveKey("不存在的键"); err == nil {
		t.Error("非法按键名应报错")
	}
	if _, err := resolveKey(""); err == nil {
		t.Error("空按键名应报错")
	}
}
