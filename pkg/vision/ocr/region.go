package ocr

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/nzbot/nzbot/internal/logger"
	"github.com/nzbot/nzbot/pkg/screen"
	"github.com/nzbot/nzbot/pkg/vision/preprocess"
)

// defaultCapture 默认截图实现
func defaultCapture(x, y, w, h int) (image.Image, error) {
	return screen.CaptureRegion(x, y, w, h)
}

// OcrScreen 截取屏幕区域并识别
//
// 结果坐标已换算为屏幕绝对坐标。
func (r *TextRecognizer) OcrScreen(x, y, w, h int, useFrameCache, debug bool) ([]OcrResultItem, error) {
	img, err := r.capture(x, y, w, h)
	if err != nil {
		return nil, err
	}

	results, err := r.Recognize(img, useFrameCache, debug)
	if err != nil {
		return nil, err
	}

	// 标注前框坐标还是区域内坐标，和截图对得上
	if debug && len(results) > 0 {
		r.dumpAnnotated(img, results)
	}

	offsetResults(results, x, y, 1)
	return results, nil
}

// dumpAnnotated 调试模式下把识别框画在截图上留档，失败只记日志
func (r *TextRecognizer) dumpAnnotated(img image.Image, results []OcrResultItem) {
	path := fmt.Sprintf("ocr_debug_%d.png", time.Now().UnixNano())
	if err := SaveAnnotated(img, results, path); err != nil {
		logger.Warn("%v", err)
	}
}

// OcrScreenSmall 截取小区域，放大二值化后识别
//
// 用于低对比度的小号数字（波次、金币计数）。结果框坐标先按放大
// 倍数还原，再换算为屏幕绝对坐标。
func (r *TextRecognizer) OcrScreenSmall(x, y, w, h, scale int, debug bool) ([]OcrResultItem, error) {
	img, err := r.capture(x, y, w, h)
	if err != nil {
		return nil, err
	}

	processed, err := preprocess.UpscaleBinarize(img, scale)
	if err != nil {
		return nil, fmt.Errorf("预处理失败: %w", err)
	}

	results, err := r.Recognize(processed, false, debug)
	if err != nil {
		return nil, err
	}

	offsetResults(results, x, y, scale)
	return results, nil
}

// OcrScreenColor 截取小区域，按目标颜色过滤后放大识别
//
// 用于文字颜色已知、背景动态的区域（如金币数字叠在动画上）。
func (r *TextRecognizer) OcrScreenColor(x, y, w, h, scale int, target color.RGBA, tolerance float64, debug bool) ([]OcrResultItem, error) {
	img, err := r.capture(x, y, w, h)
	if err != nil {
		return nil, err
	}

	processed, err := preprocess.ColorMaskUpscale(img, target, tolerance, scale)
	if err != nil {
		return nil, fmt.Errorf("预处理失败: %w", err)
	}

	results, err := r.Recognize(processed, false, debug)
	if err != nil {
		return nil, err
	}

	offsetResults(results, x, y, scale)
	return results, nil
}

// offsetResults 把识别框坐标从（可能放大过的）区域坐标换算为屏幕绝对坐标
func offsetResults(results []OcrResultItem, x, y, scale int) {
	if scale < 1 {
		scale = 1
	}
	for i := range results {
		for j := range results[i].BoxPoints {
			results[i].BoxPoints[j].X = results[i].BoxPoints[j].X/scale + x
			results[i].BoxPoints[j].Y = results[i].BoxPoints[j].Y/scale + y
		}
	}
}
