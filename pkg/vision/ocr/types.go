// Package ocr 提供 OCR 文字识别功能
package ocr

import (
	"os"
	"path/filepath"
	"runtime"
)

// Point 表示二维坐标点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// OcrResultItem 单条 OCR 识别结果
type OcrResultItem struct {
	// Text 识别的文字内容
	Text string `json:"text"`
	// BoxPoints 文字框四个角点，顺序为 左上、右上、右下、左下，
	// 坐标为屏幕绝对坐标（已做区域偏移修正）
	BoxPoints [4]Point `json:"box_points"`
	// Score 识别置信度 (0-1)
	Score float64 `json:"score"`
}

// Center 返回文字框中心点（0 号点与 2 号点构成的对角线中点）
func (r OcrResultItem) Center() (int, int) {
	x := (r.BoxPoints[0].X + r.BoxPoints[2].X) / 2
	y := (r.BoxPoints[0].Y + r.BoxPoints[2].Y) / 2
	return x, y
}

// Config OCR 配置
type Config struct {
	// OnnxRuntimeLibPath ONNX Runtime 动态库路径
	OnnxRuntimeLibPath string `json:"onnxruntime_lib_path"`
	// DetModelPath 检测模型路径
	DetModelPath string `json:"det_model_path"`
	// RecModelPath 识别模型路径
	RecModelPath string `json:"rec_model_path"`
	// DictPath 字典文件路径
	DictPath string `json:"dict_path"`
}

// DefaultConfig 默认配置（模型放在可执行文件旁的 models 目录）
func DefaultConfig() Config {
	return Config{
		OnnxRuntimeLibPath: defaultOnnxRuntimePath(),
		DetModelPath:       defaultModelPath("det.onnx"),
		RecModelPath:       defaultModelPath("rec.onnx"),
		DictPath:           defaultModelPath("dict.txt"),
	}
}

// IsAvailable 检查 OCR 功能是否可用（模型文件是否齐全）
func IsAvailable() bool {
	config := DefaultConfig()
	return fileExists(config.OnnxRuntimeLibPath) &&
		fileExists(config.DetModelPath) &&
		fileExists(config.RecModelPath) &&
		fileExists(config.DictPath)
}

// executableDir 获取可执行文件所在目录
func executableDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return "."
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return "."
	}
	return filepath.Dir(execPath)
}

// defaultOnnxRuntimePath 按平台选择 ONNX Runtime 库路径
func defaultOnnxRuntimePath() string {
	execDir := executableDir()

	var paths []string
	switch runtime.GOOS {
	case "windows":
		paths = []string{
			filepath.Join(execDir, "onnxruntime.dll"),
			filepath.Join("models", "lib", "onnxruntime.dll"),
			"onnxruntime.dll",
		}
	case "darwin":
		paths = []string{
			filepath.Join(execDir, "libonnxruntime.dylib"),
			filepath.Join("models", "lib", "onnxruntime_arm64.dylib"),
			filepath.Join("models", "lib", "onnxruntime_amd64.dylib"),
		}
	default:
		paths = []string{
			filepath.Join(execDir, "libonnxruntime.so"),
			filepath.Join("models", "lib", "onnxruntime_arm64.so"),
			filepath.Join("models", "lib", "onnxruntime_amd64.so"),
		}
	}

	for _, p := range paths {
		if fileExists(p) {
			return p
		}
	}
	return paths[len(paths)-1]
}

// defaultModelPath 获取模型文件路径
func defaultModelPath(filename string) string {
	execDir := executableDir()

	paths := []string{
		filepath.Join(execDir, "models", filename),
		filepath.Join("models", filename),
	}
	for _, p := range paths {
		if fileExists(p) {
			return p
		}
	}
	return paths[0]
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
