package ocr

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	goocr "github.com/getcharzp/go-ocr"
)

func TestAnnotateResults(t *testing.T) {
	frame := newTestImage(color.RGBA{0, 0, 0, 255}, 64, 64)
	results := []OcrResultItem{{
		Text:      "开始",
		Score:     0.9,
		BoxPoints: [4]Point{{10, 30}, {40, 30}, {40, 50}, {10, 50}},
	}}

	annotated := AnnotateResults(frame, results)

	// 框线沿角点绘制，取左上角验证
	if got := annotated.RGBAAt(10, 30); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("角点处应有绿色框线, 实际 %v", got)
	}
	// 原图不应被改动
	if got := frame.RGBAAt(10, 30); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("标注应画在副本上, 原图被改为 %v", got)
	}
}

func TestSaveAnnotated(t *testing.T) {
	frame := newTestImage(color.RGBA{20, 20, 20, 255}, 32, 32)
	results := []OcrResultItem{{
		Text:      "波次1",
		BoxPoints: [4]Point{{2, 2}, {20, 2}, {20, 12}, {2, 12}},
	}}

	path := filepath.Join(t.TempDir(), "annotated.png")
	if err := SaveAnnotated(frame, results, path); err != nil {
		t.Fatalf("保存标注截图失败: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("打开标注截图失败: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("标注截图应是合法 PNG: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 32, 32) {
		t.Errorf("标注截图尺寸错误: %v", img.Bounds())
	}
}

func TestOcrScreenDebugDump(t *testing.T) {
	t.Chdir(t.TempDir())

	engine := &fakeEngine{results: []goocr.RecResult{
		{Box: [4]int{5, 5, 25, 15}, Text: "商店", Score: 0.9},
	}}
	rec := NewTextRecognizerWithEngine(engine, Config{})
	rec.SetCaptureFunc(func(x, y, w, h int) (image.Image, error) {
		return newTestImage(color.RGBA{0, 0, 0, 255}, w, h), nil
	})

	if _, err := rec.OcrScreen(0, 0, 64, 64, false, true); err != nil {
		t.Fatalf("OcrScreen 失败: %v", err)
	}

	dumps, err := filepath.Glob("ocr_debug_*.png")
	if err != nil {
		t.Fatal(err)
	}
	if len(dumps) != 1 {
		t.Fatalf("调试模式应保存 1 张标注截图, 实际 %d 张", len(dumps))
	}
}
