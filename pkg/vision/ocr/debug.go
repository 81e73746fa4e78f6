package ocr

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/nzbot/nzbot/internal/logger"
)

// 调试标注用的中文字体，懒加载一次
var debugFont *truetype.Font

// loadDebugFont 从常见系统路径加载一个支持中文的字体
func loadDebugFont() *truetype.Font {
	if debugFont != nil {
		return debugFont
	}

	fontPaths := []string{
		// Windows
		"C:\\Windows\\Fonts\\msyh.ttc",
		"C:\\Windows\\Fonts\\simhei.ttf",
		// macOS
		"/Library/Fonts/Arial Unicode.ttf",
		// Linux
		"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
		"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	}

	for _, path := range fontPaths {
		fontBytes, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f, err := truetype.Parse(fontBytes)
		if err != nil {
			continue
		}
		debugFont = f
		return f
	}
	return nil
}

// AnnotateResults 在帧上绘制识别框和文字标签，返回标注后的副本
//
// 用于调试回放：观察某次识别在屏幕上命中了哪些文字。
func AnnotateResults(frame image.Image, results []OcrResultItem) *image.RGBA {
	bounds := frame.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, frame, bounds.Min, draw.Src)

	green := color.RGBA{0, 255, 0, 255}
	for _, item := range results {
		drawBox(rgba, item.BoxPoints, green)
		drawLabel(rgba, item.BoxPoints[0].X, item.BoxPoints[0].Y-18,
			fmt.Sprintf("%s (%.2f)", item.Text, item.Score))
	}
	return rgba
}

// SaveAnnotated 标注识别结果并保存为 PNG
func SaveAnnotated(frame image.Image, results []OcrResultItem, path string) error {
	annotated := AnnotateResults(frame, results)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建调试截图失败: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, annotated); err != nil {
		return fmt.Errorf("编码调试截图失败: %w", err)
	}
	logger.Debug("调试截图已保存: %s", path)
	return nil
}

// drawBox 沿四个角点绘制边框
func drawBox(img *image.RGBA, pts [4]Point, col color.RGBA) {
	for i := 0; i < 4; i++ {
		p1 := pts[i]
		p2 := pts[(i+1)%4]
		drawLine(img, p1.X, p1.Y, p2.X, p2.Y, col)
	}
}

// drawLine 简单的 Bresenham 直线
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if image.Pt(x1, y1).In(img.Bounds()) {
			img.SetRGBA(x1, y1, col)
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

// drawLabel 在指定位置绘制文字标签，字体不可用时跳过
func drawLabel(img *image.RGBA, x, y int, text string) {
	f := loadDebugFont()
	if f == nil {
		return
	}

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(14)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(color.RGBA{255, 0, 0, 255}))
	c.SetHinting(font.HintingFull)

	pt := freetype.Pt(x, y+int(c.PointToFixed(14)>>6))
	c.DrawString(text, pt)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
