package stop

import "testing"

func TestFlag(t *testing.T) {
	f := NewFlag()

	if f.ShouldStop() {
		t.Error("初始状态不应为停止")
	}

	f.Request()
	if !f.ShouldStop() {
		t.Error("Request 后应为停止状态")
	}

	f.Reset()
	if f.ShouldStop() {
		t.Error("Reset 后不应为停止状态")
	}
}

func TestDefaultFlag(t *testing.T) {
	ResetStop()
	if ShouldStop() {
		t.Error("重置后默认标志不应为停止")
	}

	RequestStop()
	if !ShouldStop() {
		t.Error("请求后默认标志应为停止")
	}
	if !Default().ShouldStop() {
		t.Error("Default() 应与包级别函数共享状态")
	}
	ResetStop()
}
