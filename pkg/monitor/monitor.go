// Package monitor 后台轮询游戏状态（当前波次、金币数）
//
// 两条独立的轮询协程各自按固定间隔截屏识别，最新值通过原子变量
// 发布，执行器读取时不会被 OCR 耗时阻塞。
package monitor

import (
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nzbot/nzbot/internal/logger"
	"github.com/nzbot/nzbot/pkg/screen"
	"github.com/nzbot/nzbot/pkg/stop"
	"github.com/nzbot/nzbot/pkg/vision/ocr"
)

// Reader 区域识别接口，生产环境由 ocr.TextRecognizer 实现
type Reader interface {
	OcrScreenSmall(x, y, w, h, scale int, debug bool) ([]ocr.OcrResultItem, error)
	OcrScreenColor(x, y, w, h, scale int, target color.RGBA, tolerance float64, debug bool) ([]ocr.OcrResultItem, error)
}

// 小字号区域的放大倍数
const upscaleFactor = 3

// Config 监视器配置
type Config struct {
	WaveRegion screen.Region `json:"wave_region"`
	GoldRegion screen.Region `json:"gold_region"`

	WaveIntervalMs int `json:"wave_interval_ms"`
	GoldIntervalMs int `json:"gold_interval_ms"`

	// GoldUseColorFilter 金币区域背景动态时启用颜色过滤
	GoldUseColorFilter bool       `json:"gold_use_color_filter"`
	GoldTextColor      color.RGBA `json:"gold_text_color"`
	GoldColorTolerance float64    `json:"gold_color_tolerance"`

	Debug bool `json:"debug"`
}

// DefaultConfig 返回 1920x1080 下的默认监视配置
func DefaultConfig() Config {
	return Config{
		WaveRegion:         screen.Region{X: 910, Y: 10, Width: 100, Height: 40},
		GoldRegion:         screen.Region{X: 1700, Y: 10, Width: 200, Height: 40},
		WaveIntervalMs:     500,
		GoldIntervalMs:     500,
		GoldTextColor:      color.RGBA{R: 255, G: 215, B: 0, A: 255},
		GoldColorTolerance: 60,
	}
}

// Monitor 游戏状态监视器
type Monitor struct {
	reader Reader
	cfg    Config
	flag   *stop.Flag

	wave    atomic.Uint32
	gold    atomic.Int64
	running atomic.Bool

	quit chan struct{}
	wg   sync.WaitGroup
}

// New 创建监视器。flag 为 nil 时只响应 Stop 调用。
func New(reader Reader, cfg Config, flag *stop.Flag) *Monitor {
	return &Monitor{
		reader: reader,
		cfg:    cfg,
		flag:   flag,
	}
}

// Start 启动轮询协程，重复调用只生效一次
func (m *Monitor) Start() {
	if !m.running.CompareAndSwap(false, true) {
		logger.Warn("监视器已在运行，忽略重复启动")
		return
	}

	m.quit = make(chan struct{})
	m.wg.Add(2)
	go m.waveLoop()
	go m.goldLoop()
	logger.Info("状态监视器已启动: 波次 %dms / 金币 %dms",
		m.cfg.WaveIntervalMs, m.cfg.GoldIntervalMs)
}

// Stop 停止轮询并等待协程退出
func (m *Monitor) Stop() {
	if !m.running.CompareAndSwap(true, false) {
		return
	}
	close(m.quit)
	m.wg.Wait()
	logger.Info("状态监视器已停止")
}

// Reset 清零已发布的状态（新一局开始前调用）
func (m *Monitor) Reset() {
	m.wave.Store(0)
	m.gold.Store(0)
}

// CurrentWave 返回最近识别到的波次，0 表示尚未识别到
func (m *Monitor) CurrentWave() uint32 {
	return m.wave.Load()
}

// CurrentGold 返回最近识别到的金币数
func (m *Monitor) CurrentGold() int64 {
	return m.gold.Load()
}

// IsRunning 返回监视器是否在运行
func (m *Monitor) IsRunning() bool {
	return m.running.Load()
}

func (m *Monitor) waveLoop() {
	defer m.wg.Done()
	interval := time.Duration(m.cfg.WaveIntervalMs) * time.Millisecond

	for {
		if m.shouldExit() {
			return
		}

		r := m.cfg.WaveRegion
		results, err := m.reader.OcrScreenSmall(r.X, r.Y, r.Width, r.Height, upscaleFactor, m.cfg.Debug)
		if err != nil {
			logger.Debug("波次识别失败: %v", err)
		} else {
			m.publishWave(results)
		}

		if !m.waitNext(interval) {
			return
		}
	}
}

func (m *Monitor) goldLoop() {
	defer m.wg.Done()
	interval := time.Duration(m.cfg.GoldIntervalMs) * time.Millisecond

	for {
		if m.shouldExit() {
			return
		}

		r := m.cfg.GoldRegion
		var results []ocr.OcrResultItem
		var err error
		if m.cfg.GoldUseColorFilter {
			results, err = m.reader.OcrScreenColor(r.X, r.Y, r.Width, r.Height,
				upscaleFactor, m.cfg.GoldTextColor, m.cfg.GoldColorTolerance, m.cfg.Debug)
		} else {
			results, err = m.reader.OcrScreenSmall(r.X, r.Y, r.Width, r.Height,
				upscaleFactor, m.cfg.Debug)
		}
		if err != nil {
			logger.Debug("金币识别失败: %v", err)
		} else {
			m.publishGold(results)
		}

		if !m.waitNext(interval) {
			return
		}
	}
}

// publishWave 逐条解析识别结果并发布波次
//
// 波次区域可能同时识别出计数和进度等多个文字片段，必须逐条解析，
// 把多条文字拼起来再提取数字会得到完全错误的值。
func (m *Monitor) publishWave(results []ocr.OcrResultItem) {
	for _, item := range results {
		wave, ok := parseWaveNumber(item.Text)
		if !ok || wave == 0 {
			continue
		}
		if old := m.wave.Load(); wave != old {
			m.wave.Store(wave)
			logger.Info("波次: %d → %d", old, wave)
		}
	}
}

// publishGold 逐条解析识别结果并发布金币数，后解析出的覆盖先解析出的
func (m *Monitor) publishGold(results []ocr.OcrResultItem) {
	for _, item := range results {
		if gold, ok := parseGold(item.Text); ok {
			m.gold.Store(gold)
		}
	}
}

// shouldExit 不阻塞地检查退出条件
func (m *Monitor) shouldExit() bool {
	if m.flag != nil && m.flag.ShouldStop() {
		return true
	}
	select {
	case <-m.quit:
		return true
	default:
		return false
	}
}

// waitNext 等待下一个轮询周期，返回 false 表示应当退出
func (m *Monitor) waitNext(interval time.Duration) bool {
	select {
	case <-m.quit:
		return false
	case <-time.After(interval):
	}
	if m.flag != nil && m.flag.ShouldStop() {
		return false
	}
	return true
}
