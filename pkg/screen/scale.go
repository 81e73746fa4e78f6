package screen

// 策略坐标以 1920x1080 为基准录制，运行时按实际分辨率等比缩放。

// 基准分辨率
const (
	BaseWidth  = 1920
	BaseHeight = 1080
)

// 实际分辨率，可在测试中覆盖
var screenSizeFn = GetScreenSize

// ScaleX 将基准 X 坐标缩放到实际分辨率
func ScaleX(x int) int {
	w, _ := screenSizeFn()
	return x * w / BaseWidth
}

// ScaleY 将基准 Y 坐标缩放到实际分辨率
func ScaleY(y int) int {
	_, h := screenSizeFn()
	return y * h / BaseHeight
}

// ScaleRegion 将基准区域缩放到实际分辨率
func ScaleRegion(x, y, w, h int) (int, int, int, int) {
	return ScaleX(x), ScaleY(y), ScaleX(w), ScaleY(h)
}

// FullScreenRegion 返回覆盖整个屏幕的区域
func FullScreenRegion() (int, int, int, int) {
	w, h := screenSizeFn()
	return 0, 0, w, h
}
