// Package process 提供游戏进程的发现与窗口激活
package process

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/nzbot/nzbot/internal/logger"
	"github.com/nzbot/nzbot/pkg/stop"
)

// GameProcess 游戏进程信息
type GameProcess struct {
	PID  int    `json:"pid"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// FindGame 按进程名查找游戏进程（不区分大小写，支持部分匹配）
//
// 同名进程可能有多个（启动器 + 游戏本体），全部返回由调用方挑选。
func FindGame(name string) ([]GameProcess, error) {
	pids, err := process.Pids()
	if err != nil {
		return nil, fmt.Errorf("获取进程列表失败: %w", err)
	}

	name = strings.ToLower(name)
	var matches []GameProcess

	for _, pid := range pids {
		proc, err := process.NewProcess(pid)
		if err != nil {
			continue
		}

		procName, err := proc.Name()
		if err != nil {
			continue
		}

		if strings.Contains(strings.ToLower(procName), name) {
			exe, _ := proc.Exe()
			matches = append(matches, GameProcess{
				PID:  int(pid),
				Name: procName,
				Path: exe,
			})
		}
	}

	return matches, nil
}

// IsGameRunning 检查游戏进程是否存在
func IsGameRunning(name string) bool {
	matches, err := FindGame(name)
	return err == nil && len(matches) > 0
}

// IsRunning 检查指定 PID 的进程是否存活
func IsRunning(pid int) bool {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	running, err := proc.IsRunning()
	if err != nil {
		return false
	}
	return running
}

// WaitForGame 阻塞等待游戏进程出现
//
// 每秒扫描一次进程列表，收到停止信号时返回 nil, false。
func WaitForGame(name string, flag *stop.Flag) (*GameProcess, bool) {
	logger.Info("等待游戏进程 %q ...", name)
	for {
		if flag != nil && flag.ShouldStop() {
			return nil, false
		}

		matches, err := FindGame(name)
		if err != nil {
			logger.Warn("扫描进程失败: %v", err)
		} else if len(matches) > 0 {
			logger.Info("找到游戏进程: %s (PID %d)", matches[0].Name, matches[0].PID)
			return &matches[0], true
		}

		time.Sleep(time.Second)
	}
}

// ActivateWindow 把游戏窗口切到前台
func ActivateWindow(pid int) error {
	if err := robotgo.ActivePid(pid); err != nil {
		return fmt.Errorf("激活游戏窗口失败 (PID %d): %w", pid, err)
	}
	return nil
}
