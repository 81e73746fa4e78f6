package executor

import (
	"fmt"
	"time"

	"github.com/nzbot/nzbot/internal/logger"
	"github.com/nzbot/nzbot/pkg/strategy"
	"github.com/nzbot/nzbot/pkg/vision/ocr"
)

// 波次标记出现在屏幕左上角，只扫这一小块
const (
	waveRegionW = 420
	waveRegionH = 320
)

// buyTraps 打开商店按顺序购买
//
// 商店默认停在"全部"页面；当前页面找不到的陷阱依次切到"地面"、
// "墙面"页面再找。无论中途是否停止，打开过的商店都会关闭。
func (e *Executor) buyTraps(shopOrder []string) error {
	if e.shouldStop() {
		return nil
	}

	logger.Info("打开商店，购买顺序: %v", shopOrder)
	e.ocr.ClearFrameCache()
	if err := e.in.TapKey(e.keys.Shop); err != nil {
		return err
	}
	e.sleep(time.Second)

	if e.shouldStop() {
		return e.in.TapKey(e.keys.Shop)
	}

	fx, fy, fw, fh := e.fullRegion()
	tabs := []string{"地面", "墙面"}

	for _, trapName := range shopOrder {
		if e.shouldStop() {
			return e.in.TapKey(e.keys.Shop)
		}

		results, err := e.ocr.OcrScreen(fx, fy, fw, fh, false, e.debug)
		if err != nil {
			return fmt.Errorf("商店识别失败: %w", err)
		}

		if item := ocr.FindTextContains(results, trapName); item != nil {
			logger.Info("购买: %s", trapName)
			if err := e.buyTrapClick(item); err != nil {
				return err
			}
			continue
		}

		// 当前页面没找到，换页再找
		found := false
		for _, tab := range tabs {
			if e.shouldStop() {
				return e.in.TapKey(e.keys.Shop)
			}

			tabItem := ocr.FindTextContains(results, tab)
			if tabItem == nil {
				continue
			}
			logger.Info("切换到 %q 页面", tab)
			tx, ty := tabItem.Center()
			if err := e.in.ClickAt(tx, ty); err != nil {
				return err
			}
			e.sleep(500 * time.Millisecond)

			results, err = e.ocr.OcrScreen(fx, fy, fw, fh, false, e.debug)
			if err != nil {
				return fmt.Errorf("商店识别失败: %w", err)
			}
			if item := ocr.FindTextContains(results, trapName); item != nil {
				logger.Info("在 %q 页面购买: %s", tab, trapName)
				if err := e.buyTrapClick(item); err != nil {
					return err
				}
				found = true
				break
			}
		}
		if !found {
			logger.Warn("商店未找到 %q，跳过", trapName)
		}
	}

	return e.in.TapKey(e.keys.Shop)
}

// buyTrapClick 移动到商品下方并连点三次购买
func (e *Executor) buyTrapClick(item *ocr.OcrResultItem) error {
	cx, cy := item.Center()
	if err := e.in.MoveTo(cx+e.scaleX(50), cy+e.scaleY(50)); err != nil {
		return err
	}
	e.sleep(300 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := e.in.LeftClick(); err != nil {
			return err
		}
		e.sleep(300 * time.Millisecond)
	}
	e.sleep(200 * time.Millisecond)
	return nil
}

// placeBuilding 选快捷键后移动到目标点双击放置
func (e *Executor) placeBuilding(b *strategy.Building) error {
	logger.Info("放置 %s @ (%d, %d) wave=%d", b.Name, b.ScreenX, b.ScreenY, b.Wave)

	if err := e.in.TapKey(b.TrapKey); err != nil {
		return err
	}
	e.sleep(300 * time.Millisecond)
	if err := e.in.MoveTo(b.ScreenX, b.ScreenY); err != nil {
		return err
	}
	e.sleep(200 * time.Millisecond)
	if err := e.in.LeftClick(); err != nil {
		return err
	}
	e.sleep(200 * time.Millisecond)
	if err := e.in.LeftClick(); err != nil {
		return err
	}
	e.sleep(300 * time.Millisecond)
	return nil
}

// waitForWaveMarker 轮询等待波次标记文字出现
//
// 每轮先执行 wait_wave_N 巡逻动作，再识别左上角小区域；识别到
// "返回游戏"弹窗时移过去连点关闭。返回 false 表示收到停止信号。
func (e *Executor) waitForWaveMarker(s *strategy.Strategy, wave uint32) (bool, error) {
	target := fmt.Sprintf("波次%d", wave)
	waitTrigger := fmt.Sprintf("wait_wave_%d", wave)
	logger.Info("等待 %s ...", target)

	e.ocr.ClearFrameCache()
	rx, ry, rw, rh := e.scaleRegion(0, 0, waveRegionW, waveRegionH)

	for {
		if e.shouldStop() {
			return false, nil
		}

		if _, err := e.runMovementPhases(s, waitTrigger); err != nil {
			return false, err
		}

		results, err := e.ocr.OcrScreen(rx, ry, rw, rh, false, e.debug)
		if err != nil {
			return false, fmt.Errorf("波次识别失败: %w", err)
		}

		if popup := ocr.FindTextContains(results, "返回游戏"); popup != nil {
			logger.Info("关闭返回游戏弹窗")
			if err := e.dismissPopup(popup); err != nil {
				return false, err
			}
			continue
		}

		if ocr.FindTextContains(results, target) != nil {
			logger.Info("检测到 %s", target)
			return true, nil
		}
	}
}

// dismissPopup 移动到弹窗按钮附近连点三次
func (e *Executor) dismissPopup(item *ocr.OcrResultItem) error {
	x, y := item.Center()
	if err := e.in.MoveTo(x+e.scaleX(50), y+e.scaleY(50)); err != nil {
		return err
	}
	e.sleep(200 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := e.in.LeftClick(); err != nil {
			return err
		}
		e.sleep(200 * time.Millisecond)
	}
	e.sleep(300 * time.Millisecond)
	return nil
}

// RunStrategy 执行一份完整策略
//
// 流程：购买 → 进入放置模式 → 按排序键逐个摆放（穿插移动阶段和
// 波次等待）→ 退出放置模式 → after_placement → 等待游戏结束。
// 收到停止信号时关闭已打开的商店/放置模式后返回，不报错。
func (e *Executor) RunStrategy(s *strategy.Strategy) error {
	if e.shouldStop() {
		return nil
	}

	logger.Info("开始执行策略: %s", s.Meta.Name)
	e.ocr.ClearFrameCache()

	if err := e.buyTraps(s.ShopOrder); err != nil {
		return err
	}
	if e.shouldStop() {
		return nil
	}

	logger.Info("进入放置模式")
	if err := e.in.TapKey(e.keys.Placement); err != nil {
		return err
	}
	e.sleep(500 * time.Millisecond)

	sorted := s.SortedBuildings()

	var currentWave uint32
	waveStarted := false

	for i := range sorted {
		b := &sorted[i]

		if e.shouldStop() {
			return e.in.TapKey(e.keys.Placement)
		}

		if b.Wave != currentWave {
			currentWave = b.Wave
			waveStarted = false

			ok, err := e.runMovementPhases(s, fmt.Sprintf("before_wave_%d", currentWave))
			if err != nil {
				return err
			}
			if !ok {
				return e.in.TapKey(e.keys.Placement)
			}
		}

		if b.IsLate && !waveStarted {
			// 第一波不会自己开始，需要手动触发
			if currentWave == 1 {
				if err := e.in.TapKey(e.keys.StartWave); err != nil {
					return err
				}
			}

			ok, err := e.waitForWaveMarker(s, currentWave)
			if err != nil {
				return err
			}
			if !ok {
				return e.in.TapKey(e.keys.Placement)
			}
			waveStarted = true

			ok, err = e.runMovementPhases(s, fmt.Sprintf("during_wave_%d", currentWave))
			if err != nil {
				return err
			}
			if !ok {
				return e.in.TapKey(e.keys.Placement)
			}
		}

		if err := e.placeBuilding(b); err != nil {
			return err
		}
	}

	// 全是波前建筑时没有任何路径触发过开波，这里补一次
	if hasEarlyWaveOne(sorted) && !s.HasLateBuildings() {
		if err := e.in.TapKey(e.keys.StartWave); err != nil {
			return err
		}
	}

	logger.Info("退出放置模式")
	if err := e.in.TapKey(e.keys.Placement); err != nil {
		return err
	}
	e.sleep(500 * time.Millisecond)

	if e.shouldStop() {
		return nil
	}

	ok, err := e.runMovementPhases(s, "after_placement")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if e.shouldStop() {
		return nil
	}

	if err := e.WaitForGameEnd(); err != nil {
		return err
	}

	logger.Info("策略执行完成: %s", s.Meta.Name)
	return nil
}

func hasEarlyWaveOne(buildings []strategy.Building) bool {
	for i := range buildings {
		if buildings[i].Wave == 1 && !buildings[i].IsLate {
			return true
		}
	}
	return false
}
