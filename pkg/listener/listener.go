// Package listener 监听全局热键（F9 开始 / F10 停止）
package listener

import (
	hook "github.com/robotn/gohook"

	"github.com/nzbot/nzbot/internal/logger"
	"github.com/nzbot/nzbot/pkg/input"
	"github.com/nzbot/nzbot/pkg/stop"
)

// 停止时需要兜底释放的移动键
var movementKeys = []string{"shift", "ctrl", "alt", "w", "a", "s", "d"}

// Listener 全局热键监听器
//
// F9 清除停止信号并发出开始事件；F10 置位停止信号并释放可能还
// 按着的移动键。停止是协作式的：各执行循环看到信号后自行退出，
// 监听器不终止任何协程。
type Listener struct {
	flag *stop.Flag
	ctrl *input.Controller

	// Start 每次按下 F9 投递一个事件，带缓冲避免丢键
	Start chan struct{}
}

// New 创建热键监听器
func New(flag *stop.Flag, ctrl *input.Controller) *Listener {
	return &Listener{
		flag:  flag,
		ctrl:  ctrl,
		Start: make(chan struct{}, 1),
	}
}

// Run 注册热键并阻塞处理事件，调用 Close 后返回
func (l *Listener) Run() {
	hook.Register(hook.KeyDown, []string{"f9"}, func(e hook.Event) {
		logger.Info("检测到 F9，开始执行")
		l.flag.Reset()
		select {
		case l.Start <- struct{}{}:
		default:
			// 上一个开始事件还没被消费，丢弃本次按键
		}
	})

	hook.Register(hook.KeyDown, []string{"f10"}, func(e hook.Event) {
		logger.Info("检测到 F10，请求停止")
		l.flag.Request()
		l.ctrl.ReleaseKeys(movementKeys)
	})

	logger.Info("热键监听已装载 F9:开始 F10:停止")

	events := hook.Start()
	<-hook.Process(events)
	logger.Info("热键监听已卸载")
}

// Close 停止热键监听，令 Run 返回
func (l *Listener) Close() {
	hook.End()
}
