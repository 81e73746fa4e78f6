// Package config 管理程序的本地配置文件
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nzbot/nzbot/pkg/executor"
	"github.com/nzbot/nzbot/pkg/monitor"
	"github.com/nzbot/nzbot/pkg/vision/ocr"
)

// 输入后端类型
const (
	BackendRobot    = "robot"    // 系统级绝对定位
	BackendRelative = "relative" // 纯相对位移闭环定位（全屏独占游戏用）
)

// BotConfig 程序配置
type BotConfig struct {
	// OCR 模型路径，空字段使用内置探测
	OCR ocr.Config `json:"ocr"`

	// Monitor 波次/金币监视配置
	Monitor monitor.Config `json:"monitor"`

	// InputBackend 输入后端："robot" 或 "relative"
	InputBackend string `json:"input_backend"`

	// Keys 流程控制键位
	Keys executor.Keys `json:"keys"`

	// StrategyPath 默认策略文件路径
	StrategyPath string `json:"strategy_path"`

	// ProcessName 游戏进程名，用于启动前检查
	ProcessName string `json:"process_name"`

	// Rounds 连续执行的局数
	Rounds int `json:"rounds"`

	Debug    bool   `json:"debug"`
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file,omitempty"`
}

// DefaultBotConfig 默认配置
func DefaultBotConfig() *BotConfig {
	return &BotConfig{
		OCR:          ocr.DefaultConfig(),
		Monitor:      monitor.DefaultConfig(),
		InputBackend: BackendRelative,
		Keys:         executor.DefaultKeys(),
		StrategyPath: "strategy.json",
		ProcessName:  "nz.exe",
		Rounds:       1,
		LogLevel:     "info",
	}
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := filepath.Join(homeDir, ".nzbot")
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// ensureDir 确保配置目录存在
func (m *Manager) ensureDir() error {
	return os.MkdirAll(m.configDir, 0755)
}

// Load 加载配置，文件不存在时返回默认配置
func (m *Manager) Load() (*BotConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return DefaultBotConfig(), nil
	}

	data, err := os.ReadFile(m.configFile)
	if err != nil {
		return DefaultBotConfig(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := DefaultBotConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return DefaultBotConfig(), fmt.Errorf("解析配置文件失败: %w", err)
	}

	return config, nil
}

// Save 保存配置
func (m *Manager) Save(config *BotConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureDir(); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Clear 清除配置
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(m.configFile)
}

// GetConfigDir 获取配置目录
func (m *Manager) GetConfigDir() string {
	return m.configDir
}
