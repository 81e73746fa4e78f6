// Package executor 解释执行声明式策略
//
// 执行器把策略文件中的购买、摆放、移动阶段编排成一局完整流程，
// 所有外部依赖（输入、OCR、状态监视）都通过接口注入。
package executor

import (
	"fmt"
	"image"
	"time"

	"github.com/nzbot/nzbot/internal/logger"
	"github.com/nzbot/nzbot/pkg/input"
	"github.com/nzbot/nzbot/pkg/screen"
	"github.com/nzbot/nzbot/pkg/stop"
	"github.com/nzbot/nzbot/pkg/strategy"
	"github.com/nzbot/nzbot/pkg/vision/ocr"
)

// ScreenReader 屏幕区域识别接口，生产环境由 ocr.TextRecognizer 实现
type ScreenReader interface {
	OcrScreen(x, y, w, h int, useFrameCache, debug bool) ([]ocr.OcrResultItem, error)
	ClearFrameCache()
}

// StateSource 游戏状态来源，生产环境由 monitor.Monitor 实现
type StateSource interface {
	CurrentWave() uint32
	CurrentGold() int64
}

// Keys 流程控制键位
type Keys struct {
	Shop      string `json:"shop"`       // 开关商店
	Placement string `json:"placement"`  // 开关平面放置模式
	StartWave string `json:"start_wave"` // 开始下一波
}

// DefaultKeys 游戏默认键位
func DefaultKeys() Keys {
	return Keys{Shop: "n", Placement: "o", StartWave: "g"}
}

// Options 执行器可选配置
type Options struct {
	Keys  Keys
	Debug bool
}

// Executor 策略执行器
type Executor struct {
	in    *input.Controller
	ocr   ScreenReader
	state StateSource
	flag  *stop.Flag

	keys  Keys
	debug bool

	// 测试中可替换
	sleep       func(time.Duration)
	captureFull func() (image.Image, error)
	saveShot    func(img image.Image, path string) error
	scaleX      func(int) int
	scaleY      func(int) int
	fullRegion  func() (int, int, int, int)
}

// New 创建执行器。state 为 nil 时 WaitGold/WaitWave 直接报错。
func New(in *input.Controller, reader ScreenReader, state StateSource, flag *stop.Flag, opts Options) *Executor {
	keys := opts.Keys
	if keys.Shop == "" {
		keys = DefaultKeys()
	}
	return &Executor{
		in:          in,
		ocr:         reader,
		state:       state,
		flag:        flag,
		keys:        keys,
		debug:       opts.Debug,
		sleep:       time.Sleep,
		captureFull: screen.CaptureScreen,
		saveShot:    screen.SaveImage,
		scaleX:      screen.ScaleX,
		scaleY:      screen.ScaleY,
		fullRegion:  screen.FullScreenRegion,
	}
}

// scaleRegion 把 1920x1080 基准区域缩放到实际分辨率
func (e *Executor) scaleRegion(x, y, w, h int) (int, int, int, int) {
	return e.scaleX(x), e.scaleY(y), e.scaleX(w), e.scaleY(h)
}

func (e *Executor) shouldStop() bool {
	return e.flag != nil && e.flag.ShouldStop()
}

// ExecuteStep 执行单个动作步骤
func (e *Executor) ExecuteStep(step *strategy.ActionStep) error {
	switch step.Type {
	case strategy.ActionPressKey:
		return e.in.PressKey(step.Key, secs(step.Duration))
	case strategy.ActionTapKey:
		return e.in.TapKey(step.Key)
	case strategy.ActionKeyDown:
		return e.in.KeyDown(step.Key)
	case strategy.ActionKeyUp:
		return e.in.KeyUp(step.Key)
	case strategy.ActionSendRelative:
		return e.in.MoveRelative(step.Dx, step.Dy)
	case strategy.ActionSleep:
		e.sleep(secs(step.Duration))
		return nil
	case strategy.ActionClick:
		return e.in.LeftClick()
	case strategy.ActionMoveTo:
		return e.in.MoveTo(step.X, step.Y)
	case strategy.ActionClickAt:
		return e.in.ClickAt(step.X, step.Y)
	default:
		return fmt.Errorf("未知动作类型: %q", step.Type)
	}
}

// ExecuteActions 顺序执行动作序列，每步之间检查停止信号
//
// 返回 false 表示因停止信号提前退出。
func (e *Executor) ExecuteActions(steps []strategy.ActionStep) (bool, error) {
	for i := range steps {
		if e.shouldStop() {
			logger.Info("动作序列第 %d 步前收到停止信号", i+1)
			return false, nil
		}
		if err := e.ExecuteStep(&steps[i]); err != nil {
			return false, fmt.Errorf("动作序列第 %d 步失败: %w", i+1, err)
		}
	}
	return true, nil
}

// runMovementPhases 执行触发名匹配的所有移动阶段
func (e *Executor) runMovementPhases(s *strategy.Strategy, trigger string) (bool, error) {
	for _, phase := range s.PhasesFor(trigger) {
		logger.Info("执行移动阶段: %s (%s)", phase.Name, trigger)
		ok, err := e.ExecuteActions(phase.Actions)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// WaitGold 阻塞等待金币达到指定数额
//
// 每 500ms 检查一次后台监视的金币数，停止信号出现时提前返回 false。
func (e *Executor) WaitGold(amount int64) (bool, error) {
	if e.state == nil {
		return false, fmt.Errorf("未配置状态监视器")
	}
	logger.Info("等待金币 >= %d", amount)
	for {
		if e.shouldStop() {
			return false, nil
		}
		if gold := e.state.CurrentGold(); gold >= amount {
			logger.Info("金币 %d >= %d，继续", gold, amount)
			return true, nil
		}
		e.sleep(500 * time.Millisecond)
	}
}

// WaitWave 阻塞等待波次达到指定值
func (e *Executor) WaitWave(wave uint32) (bool, error) {
	if e.state == nil {
		return false, fmt.Errorf("未配置状态监视器")
	}
	logger.Info("等待波次 >= %d", wave)
	for {
		if e.shouldStop() {
			return false, nil
		}
		if current := e.state.CurrentWave(); current >= wave {
			logger.Info("波次 %d >= %d，继续", current, wave)
			return true, nil
		}
		e.sleep(500 * time.Millisecond)
	}
}

func secs(d float64) time.Duration {
	return time.Duration(d * float64(time.Second))
}
