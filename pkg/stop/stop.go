// Package stop 提供协作式停止信号
//
// 所有后台循环（监控、执行器、等待循环）在每次迭代边界检查同一个标志，
// 收到信号后自行收尾退出，不使用强制终止。
package stop

import "sync/atomic"

// Flag 停止标志
type Flag struct {
	v atomic.Bool
}

// NewFlag 创建新的停止标志
func NewFlag() *Flag {
	return &Flag{}
}

// Request 请求停止所有任务
func (f *Flag) Request() {
	f.v.Store(true)
}

// Reset 重置停止标志（用于重新启动）
func (f *Flag) Reset() {
	f.v.Store(false)
}

// ShouldStop 检查是否应该停止
func (f *Flag) ShouldStop() bool {
	return f.v.Load()
}

// 全局默认标志
var defaultFlag = NewFlag()

// Default 获取默认停止标志
func Default() *Flag {
	return defaultFlag
}

// 包级别便捷函数
func RequestStop()      { defaultFlag.Request() }
func ResetStop()        { defaultFlag.Reset() }
func ShouldStop() bool  { return defaultFlag.ShouldStop() }
