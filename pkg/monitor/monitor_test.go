package monitor

import (
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nzbot/nzbot/pkg/stop"
	"github.com/nzbot/nzbot/pkg/vision/ocr"
)

// fakeReader 固定返回指定文字的区域识别桩
type fakeReader struct {
	waveText  string
	goldText  string
	colorHits atomic.Int32
	smallHits atomic.Int32
}

func (f *fakeReader) OcrScreenSmall(x, y, w, h, scale int, debug bool) ([]ocr.OcrResultItem, error) {
	f.smallHits.Add(1)
	// 波次和金币区域用 X 坐标区分
	if x < 1000 {
		return []ocr.OcrResultItem{{Text: f.waveText}}, nil
	}
	return []ocr.OcrResultItem{{Text: f.goldText}}, nil
}

func (f *fakeReader) OcrScreenColor(x, y, w, h, scale int, target color.RGBA, tolerance float64, debug bool) ([]ocr.OcrResultItem, error) {
	f.colorHits.Add(1)
	return []ocr.OcrResultItem{{Text: f.goldText}}, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.WaveIntervalMs = 5
	cfg.GoldIntervalMs = 5
	return cfg
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("等待条件超时")
}

func TestParseWaveNumber(t *testing.T) {
	cases := []struct {
		text string
		want uint32
		ok   bool
	}{
		{"2", 2, true},
		{"02", 2, true},
		{"10", 10, true},
		{"波次3", 3, true},
		{"没有数字", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := parseWaveNumber(c.text)
		if ok != c.ok || got != c.want {
			t.Errorf("parseWaveNumber(%q) = (%d, %v), 期望 (%d, %v)", c.text, got, ok, c.want, c.ok)
		}
	}
}

func TestParseGold(t *testing.T) {
	cases := []struct {
		text string
		want int64
		ok   bool
	}{
		{"$3,999,600", 3999600, true},
		{"3.979,600", 3979600, true},
		{"0", 0, true},
		{"没有数字", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := parseGold(c.text)
		if ok != c.ok || got != c.want {
			t.Errorf("parseGold(%q) = (%d, %v), 期望 (%d, %v)", c.text, got, ok, c.want, c.ok)
		}
	}
}

func TestPublishWavePerResult(t *testing.T) {
	m := New(&fakeReader{}, testConfig(), nil)

	// 波次区域同时识别出计数和进度两个片段，必须逐条解析：
	// 拼接后提取数字会得到 21530 这种不存在的波次
	m.publishWave([]ocr.OcrResultItem{
		{Text: "02"},
		{Text: "15/30"},
	})

	if got := m.CurrentWave(); got == 21530 {
		t.Error("多条识别结果不应拼接后再解析")
	} else if got != 1530 {
		t.Errorf("应逐条解析并以最后一条为准, 实际 %d", got)
	}
}

func TestPublishWaveSkipsUnparsable(t *testing.T) {
	m := New(&fakeReader{}, testConfig(), nil)

	m.publishWave([]ocr.OcrResultItem{
		{Text: "波次2"},
		{Text: "进行中"},
		{Text: "0"},
	})

	if got := m.CurrentWave(); got != 2 {
		t.Errorf("无数字和零值片段应跳过, 实际 %d", got)
	}
}

func TestPublishGoldPerResult(t *testing.T) {
	m := New(&fakeReader{}, testConfig(), nil)

	m.publishGold([]ocr.OcrResultItem{
		{Text: "$1,234"},
		{Text: "金币"},
	})

	if got := m.CurrentGold(); got != 1234 {
		t.Errorf("应逐条解析金币, 实际 %d", got)
	}
}

func TestMonitorFirstPollImmediate(t *testing.T) {
	reader := &fakeReader{waveText: "1", goldText: "9"}
	cfg := testConfig()
	cfg.WaveIntervalMs = 60000
	cfg.GoldIntervalMs = 60000
	m := New(reader, cfg, nil)

	m.Start()
	defer m.Stop()

	// 启动后先识别一次再进入间隔等待，第一个读数不应等满一个周期
	waitFor(t, 2*time.Second, func() bool {
		return m.CurrentWave() == 1 && m.CurrentGold() == 9
	})
}

func TestMonitorPublishesState(t *testing.T) {
	reader := &fakeReader{waveText: "波次3", goldText: "$1,234"}
	m := New(reader, testConfig(), nil)

	m.Start()
	defer m.Stop()

	waitFor(t, 2*time.Second, func() bool {
		return m.CurrentWave() == 3 && m.CurrentGold() == 1234
	})
}

func TestMonitorIgnoresZeroWave(t *testing.T) {
	reader := &fakeReader{waveText: "0", goldText: ""}
	m := New(reader, testConfig(), nil)

	m.Start()
	time.Sleep(50 * time.Millisecond)
	m.Stop()

	if m.CurrentWave() != 0 {
		t.Errorf("波次 0 不应发布, 实际 %d", m.CurrentWave())
	}
}

func TestMonitorGoldColorFilter(t *testing.T) {
	reader := &fakeReader{waveText: "1", goldText: "500"}
	cfg := testConfig()
	cfg.GoldUseColorFilter = true
	m := New(reader, cfg, nil)

	m.Start()
	defer m.Stop()

	waitFor(t, 2*time.Second, func() bool {
		return reader.colorHits.Load() > 0 && m.CurrentGold() == 500
	})
}

func TestMonitorStartIdempotent(t *testing.T) {
	reader := &fakeReader{waveText: "1", goldText: "1"}
	m := New(reader, testConfig(), nil)

	m.Start()
	m.Start() // 重复启动不应再开协程
	if !m.IsRunning() {
		t.Error("启动后应处于运行状态")
	}
	m.Stop()
	if m.IsRunning() {
		t.Error("停止后不应处于运行状态")
	}
}

func TestMonitorStopPrompt(t *testing.T) {
	reader := &fakeReader{waveText: "1", goldText: "1"}
	cfg := testConfig()
	cfg.WaveIntervalMs = 5000
	cfg.GoldIntervalMs = 5000
	m := New(reader, cfg, nil)

	m.Start()
	start := time.Now()
	m.Stop()
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("长轮询间隔下停止应立即生效, 耗时 %v", elapsed)
	}
}

func TestMonitorHonorsStopFlag(t *testing.T) {
	reader := &fakeReader{waveText: "1", goldText: "1"}
	flag := &stop.Flag{}
	m := New(reader, testConfig(), flag)

	m.Start()
	flag.Request()

	// 协程看到停止信号后自行退出，Stop 只负责收尾
	waitFor(t, 2*time.Second, func() bool {
		before := reader.smallHits.Load()
		time.Sleep(20 * time.Millisecond)
		return reader.smallHits.Load() == before
	})
	m.Stop()
}

func TestMonitorReset(t *testing.T) {
	m := New(&fakeReader{}, testConfig(), nil)
	m.wave.Store(7)
	m.gold.Store(999)
	m.Reset()

	if m.CurrentWave() != 0 || m.CurrentGold() != 0 {
		t.Error("Reset 应清零波次和金币")
	}
}
