// Package screen 提供屏幕区域截图和分辨率缩放功能
package screen

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/go-vgo/robotgo"
)

// Region 屏幕矩形区域（绝对像素坐标）
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CaptureScreen 截取全屏
func CaptureScreen() (image.Image, error) {
	img, err := robotgo.CaptureImg()
	if err != nil {
		return nil, fmt.Errorf("截屏失败: %w", err)
	}
	return img, nil
}

// CaptureRegion 截取屏幕指定区域
//
// 返回 w×h 的图像，反映调用时刻的屏幕内容。区域非法或底层截图
// 失败时返回错误，由调用方决定是否重试。
func CaptureRegion(x, y, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("非法截图区域: (%d,%d) %dx%d", x, y, width, height)
	}
	img, err := robotgo.CaptureImg(x, y, width, height)
	if err != nil {
		return nil, fmt.Errorf("截取区域失败 (%d,%d,%d,%d): %w", x, y, width, height, err)
	}
	return img, nil
}

// GetScreenSize 获取屏幕尺寸
func GetScreenSize() (width, height int) {
	return robotgo.GetScreenSize()
}

// SaveImage 把图像保存为 PNG 文件
func SaveImage(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建截图文件失败: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("编码截图失败: %w", err)
	}
	return nil
}
