// Package preprocess 提供 OCR 前的图像预处理
//
// 三种互换的处理管线，由调用方按场景选择：
//   - Passthrough: 原样返回，用于大区域/全屏识别
//   - UpscaleBinarize: 放大 + 灰度 + Otsu 二值化，用于低对比度的小号数字区域
//   - ColorMaskUpscale: 颜色距离掩码 + 放大，用于已知文字颜色、背景动态的区域
//
// 每个管线都是纯函数：图像进、图像出，无共享状态。
package preprocess

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// Passthrough 原样返回输入图像
func Passthrough(img image.Image) image.Image {
	return img
}

// UpscaleBinarize 放大并二值化图像
//
// 按整数倍 scale 用三次插值放大，转灰度后用 Otsu 方法求全局阈值
// 二值化，再转回三通道供 OCR 使用。
func UpscaleBinarize(img image.Image, scale int) (image.Image, error) {
	if scale < 1 {
		return nil, fmt.Errorf("非法放大倍数: %d", scale)
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("转换图像失败: %w", err)
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	size := image.Pt(mat.Cols()*scale, mat.Rows()*scale)
	gocv.Resize(mat, &resized, size, 0, 0, gocv.InterpolationCubic)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(resized, &gray, gocv.ColorRGBToGray)

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(gray, &bin, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	out := gocv.NewMat()
	defer out.Close()
	gocv.CvtColor(bin, &out, gocv.ColorGrayToBGR)

	result, err := out.ToImage()
	if err != nil {
		return nil, fmt.Errorf("转换输出图像失败: %w", err)
	}
	return result, nil
}

// ColorMask 按颜色距离生成黑白掩码
//
// 对每个像素计算与目标颜色的 RGB 欧氏距离，距离不超过 tolerance 的
// 像素置为纯白，其余置为纯黑。
func ColorMask(img image.Image, target color.RGBA, tolerance float64) *image.RGBA {
	bounds := img.Bounds()
	mask := image.NewRGBA(bounds)

	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			dr := float64(r>>8) - float64(target.R)
			dg := float64(g>>8) - float64(target.G)
			db := float64(b>>8) - float64(target.B)
			dist := math.Sqrt(dr*dr + dg*dg + db*db)

			if dist <= tolerance {
				mask.SetRGBA(x, y, white)
			} else {
				mask.SetRGBA(x, y, black)
			}
		}
	}
	return mask
}

// ColorMaskUpscale 颜色掩码后按整数倍放大
func ColorMaskUpscale(img image.Image, target color.RGBA, tolerance float64, scale int) (image.Image, error) {
	if scale < 1 {
		return nil, fmt.Errorf("非法放大倍数: %d", scale)
	}

	mask := ColorMask(img, target, tolerance)

	mat, err := gocv.ImageToMatRGB(mask)
	if err != nil {
		return nil, fmt.Errorf("转换掩码失败: %w", err)
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	size := image.Pt(mat.Cols()*scale, mat.Rows()*scale)
	gocv.Resize(mat, &resized, size, 0, 0, gocv.InterpolationCubic)

	result, err := resized.ToImage()
	if err != nil {
		return nil, fmt.Errorf("转换输出图像失败: %w", err)
	}
	return result, nil
}
