package executor

import (
	"fmt"
	"strings"
	"time"

	"github.com/nzbot/nzbot/internal/logger"
	"github.com/nzbot/nzbot/pkg/strategy"
	"github.com/nzbot/nzbot/pkg/vision/ocr"
)

// StartGameWithDifficulty 从空间站大厅开一局指定难度的游戏
//
// difficulty 是难度按钮上的文字（如 "困难"、"炼狱"、"普通"）。
// 点完建房流程后按空格跳过开场动画，再轮询等待第一波标志出现。
func (e *Executor) StartGameWithDifficulty(difficulty string) error {
	logger.Info("开始游戏，难度: %s", difficulty)

	// 确认当前在空间站大厅
	rx, ry, rw, rh := e.scaleRegion(84, 230, 393, 61)
	results, err := e.ocr.OcrScreen(rx, ry, rw, rh, false, e.debug)
	if err != nil {
		return fmt.Errorf("大厅识别失败: %w", err)
	}
	if ocr.FindTextContains(results, "空间站") == nil {
		return fmt.Errorf("当前不在空间站，无法开始游戏")
	}

	// 右侧菜单：难度 → 创建房间 → 开始
	rx, ry, rw, rh = e.scaleRegion(1182, 0, 738, 1080)
	results, err = e.ocr.OcrScreen(rx, ry, rw, rh, false, e.debug)
	if err != nil {
		return fmt.Errorf("菜单识别失败: %w", err)
	}

	for i := range results {
		if e.shouldStop() {
			return nil
		}
		item := &results[i]
		cx, cy := item.Center()

		if strings.Contains(item.Text, difficulty) {
			logger.Info("点击难度 %q", difficulty)
			if err := e.in.ClickAt(cx, cy); err != nil {
				return err
			}
			e.sleep(200 * time.Millisecond)
		}
		if strings.Contains(item.Text, "创建房间") {
			logger.Info("点击创建房间")
			if err := e.in.ClickAt(e.scaleX(1362), e.scaleY(875)); err != nil {
				return err
			}
			e.sleep(200 * time.Millisecond)
			if err := e.in.ClickAt(e.scaleX(1685), e.scaleY(930)); err != nil {
				return err
			}
			e.sleep(200 * time.Millisecond)
		}
		if strings.Contains(item.Text, "开始") {
			logger.Info("点击开始")
			if err := e.in.ClickAt(e.scaleX(1685), e.scaleY(930)); err != nil {
				return err
			}
			e.sleep(200 * time.Millisecond)
		}
	}

	// 可能弹出的每日提示
	rx, ry, rw, rh = e.scaleRegion(674, 585, 570, 140)
	results, err = e.ocr.OcrScreen(rx, ry, rw, rh, false, e.debug)
	if err != nil {
		return fmt.Errorf("提示框识别失败: %w", err)
	}
	for i := range results {
		if e.shouldStop() {
			return nil
		}
		item := &results[i]

		if strings.Contains(item.Text, "今日不再提醒") {
			logger.Info("勾选今日不再提醒")
			if err := e.in.ClickAt(e.scaleX(898), e.scaleY(609)); err != nil {
				return err
			}
			e.sleep(200 * time.Millisecond)
		}
		if strings.Contains(item.Text, "确认开启") {
			logger.Info("点击确认开启")
			cx, cy := item.Center()
			if err := e.in.ClickAt(cx, cy); err != nil {
				return err
			}
			e.sleep(200 * time.Millisecond)
		}
	}

	e.sleep(time.Second)

	// 跳过开场动画
	if err := e.in.PressKey("space", 2*time.Second); err != nil {
		return err
	}
	e.sleep(5 * time.Second)

	logger.Info("等待游戏开始...")
	fx, fy, fw, fh := e.fullRegion()
	for {
		if e.shouldStop() {
			return nil
		}

		results, err := e.ocr.OcrScreen(fx, fy, fw, fh, false, e.debug)
		if err != nil {
			return fmt.Errorf("开局识别失败: %w", err)
		}

		if ocr.FindTextContains(results, "怪物即将来袭") != nil ||
			ocr.FindTextContains(results, "波次1") != nil {
			logger.Info("游戏已开始")
			return nil
		}
		e.sleep(time.Second)
	}
}

// WaitForGameEnd 阻塞等待本局结束
//
// 轮询全屏文字：出现结算/大厅标志即认为结束；"返回游戏"弹窗出现
// 时连点关闭；"阶段完成"出现时截图留档。每轮末尾做防挂机动作。
func (e *Executor) WaitForGameEnd() error {
	logger.Info("等待游戏结束...")
	fx, fy, fw, fh := e.fullRegion()

	for {
		if e.shouldStop() {
			return nil
		}

		results, err := e.ocr.OcrScreen(fx, fy, fw, fh, false, e.debug)
		if err != nil {
			return fmt.Errorf("结束检测识别失败: %w", err)
		}

		ended := ocr.FindTextContains(results, "开始") != nil ||
			ocr.FindTextContains(results, "炼狱") != nil ||
			ocr.FindTextContains(results, "训练基地") != nil
		if ended {
			logger.Info("游戏结束")
			return nil
		}

		if popup := ocr.FindTextContains(results, "返回游戏"); popup != nil {
			logger.Info("关闭返回游戏弹窗")
			if err := e.dismissPopup(popup); err != nil {
				return err
			}
			continue
		}

		if ocr.FindTextContains(results, "阶段完成") != nil {
			e.saveEndScreenshot()
			return nil
		}

		// 防挂机：原地做些无害动作
		if err := e.in.PressKey("5", 5*time.Second); err != nil {
			return err
		}
		if err := e.in.PressKey("6", 5*time.Second); err != nil {
			return err
		}
		if err := e.in.TapKey("space"); err != nil {
			return err
		}
		if err := e.in.TapKey(e.keys.StartWave); err != nil {
			return err
		}

		logger.Debug("等待游戏结束中...")
	}
}

// saveEndScreenshot 结算画面截图留档，失败只记日志
func (e *Executor) saveEndScreenshot() {
	img, err := e.captureFull()
	if err != nil {
		logger.Warn("结算截图失败: %v", err)
		return
	}
	path := fmt.Sprintf("game_end_%d.png", time.Now().Unix())
	if err := e.saveShot(img, path); err != nil {
		logger.Warn("保存结算截图失败: %v", err)
		return
	}
	logger.Info("结算截图已保存: %s", path)
}

// StartGameWithStrategy 用策略开一局并执行：建房 + 执行策略
func (e *Executor) StartGameWithStrategy(s *strategy.Strategy) error {
	if err := e.StartGameWithDifficulty(s.Meta.Difficulty); err != nil {
		return err
	}
	if e.shouldStop() {
		return nil
	}
	return e.RunStrategy(s)
}
