package ocr

import (
	"fmt"
	"hash/fnv"
	"image"
	"sync"
	"time"

	goocr "github.com/getcharzp/go-ocr"
	xdraw "golang.org/x/image/draw"

	"github.com/nzbot/nzbot/internal/logger"
)

// Engine 底层 OCR 引擎接口
//
// 生产环境由 go-ocr 的 PaddleOCR 引擎实现，测试中可注入桩实现。
// 引擎不保证并发安全，所有调用由 TextRecognizer 的互斥锁串行化。
type Engine interface {
	RunOCR(img image.Image) ([]goocr.RecResult, error)
	Destroy()
}

// TextRecognizer OCR 识别器
//
// 模型加载开销大，进程内应只创建一个实例并在各组件间共享。
type TextRecognizer struct {
	engine Engine
	config Config
	mu     sync.Mutex

	// 帧差缓存，独立于引擎锁
	cacheMu     sync.Mutex
	cacheHash   uint64
	cacheResult []OcrResultItem
	cacheValid  bool

	// capture 屏幕区域截图函数，测试中可替换
	capture func(x, y, w, h int) (image.Image, error)
}

// NewTextRecognizer 创建新的 OCR 识别器
func NewTextRecognizer(config Config) (*TextRecognizer, error) {
	ocrConfig := goocr.Config{
		OnnxRuntimeLibPath: config.OnnxRuntimeLibPath,
		DetModelPath:       config.DetModelPath,
		RecModelPath:       config.RecModelPath,
		DictPath:           config.DictPath,
	}

	engine, err := goocr.NewPaddleOcrEngine(ocrConfig)
	if err != nil {
		return nil, fmt.Errorf("创建 OCR 引擎失败: %w", err)
	}

	logger.Info("OCR 引擎初始化成功")

	return NewTextRecognizerWithEngine(engine, config), nil
}

// NewTextRecognizerWithEngine 使用指定引擎创建识别器（测试注入用）
func NewTextRecognizerWithEngine(engine Engine, config Config) *TextRecognizer {
	return &TextRecognizer{
		engine:  engine,
		config:  config,
		capture: defaultCapture,
	}
}

// SetCaptureFunc 替换截图函数（测试注入用）
func (r *TextRecognizer) SetCaptureFunc(fn func(x, y, w, h int) (image.Image, error)) {
	r.capture = fn
}

// Recognize 识别图像中的所有文字
//
// useFrameCache 为 true 时先比较图像感知哈希，与上次一致则直接返回
// 缓存结果，不调用引擎；无论命中与否，每次成功识别都会刷新缓存。
// 该缓存是轮询场景下的延迟优化，不用于正确性关键路径。
func (r *TextRecognizer) Recognize(img image.Image, useFrameCache, debug bool) ([]OcrResultItem, error) {
	start := time.Now()

	var hash uint64
	if useFrameCache {
		hash = frameHash(img)
		if cached, ok := r.cachedResult(hash); ok {
			if debug {
				logger.Debug("OCR: 帧未变化，复用缓存结果 (%d 条)", len(cached))
			}
			return cached, nil
		}
	}

	if r.engine == nil {
		return nil, fmt.Errorf("OCR 引擎未初始化")
	}

	r.mu.Lock()
	raw, err := r.engine.RunOCR(img)
	r.mu.Unlock()

	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		logger.LogEvent("OCR", false, elapsed, "识别失败")
		return nil, fmt.Errorf("OCR 识别失败: %w", err)
	}

	results := make([]OcrResultItem, 0, len(raw))
	for _, rec := range raw {
		results = append(results, convertResult(rec))
	}

	if useFrameCache {
		r.updateCache(hash, results)
	}

	if debug {
		texts := make([]string, 0, len(results))
		for _, item := range results {
			texts = append(texts, item.Text)
		}
		logger.Debug("OCR: %d 条 | %.1fms | %v", len(results), elapsed, texts)
	} else {
		logger.LogEvent("OCR", true, elapsed, fmt.Sprintf("识别到 %d 个文本", len(results)))
	}

	return results, nil
}

// ClearFrameCache 清空帧差缓存（场景切换时调用，避免跨场景复用旧结果）
func (r *TextRecognizer) ClearFrameCache() {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	r.cacheValid = false
	r.cacheResult = nil
}

// Close 释放引擎资源
func (r *TextRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine != nil {
		r.engine.Destroy()
		r.engine = nil
	}
	return nil
}

// cachedResult 查询帧缓存，命中条件：哈希一致且存在缓存结果
func (r *TextRecognizer) cachedResult(hash uint64) ([]OcrResultItem, bool) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	if r.cacheValid && r.cacheHash == hash && r.cacheResult != nil {
		out := make([]OcrResultItem, len(r.cacheResult))
		copy(out, r.cacheResult)
		return out, true
	}
	return nil, false
}

// updateCache 刷新帧缓存
func (r *TextRecognizer) updateCache(hash uint64, results []OcrResultItem) {
	stored := make([]OcrResultItem, len(results))
	copy(stored, results)

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	r.cacheHash = hash
	r.cacheResult = stored
	r.cacheValid = true
}

// frameHash 计算图像感知哈希：缩小到 32x32 后对像素数据做 FNV-64
func frameHash(img image.Image) uint64 {
	small := image.NewRGBA(image.Rect(0, 0, 32, 32))
	xdraw.NearestNeighbor.Scale(small, small.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	h := fnv.New64a()
	h.Write(small.Pix)
	return h.Sum64()
}

// convertResult 转换 go-ocr 结果
// go-ocr RecResult: Box [4]int{x1, y1, x2, y2}, Text string, Score float32
func convertResult(rec goocr.RecResult) OcrResultItem {
	x1, y1, x2, y2 := rec.Box[0], rec.Box[1], rec.Box[2], rec.Box[3]
	return OcrResultItem{
		Text:  rec.Text,
		Score: float64(rec.Score),
		BoxPoints: [4]Point{
			{X: x1, Y: y1},
			{X: x2, Y: y1},
			{X: x2, Y: y2},
			{X: x1, Y: y2},
		},
	}
}
