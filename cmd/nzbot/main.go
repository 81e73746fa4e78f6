package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nzbot/nzbot/internal/logger"
	"github.com/nzbot/nzbot/pkg/config"
	"github.com/nzbot/nzbot/pkg/executor"
	"github.com/nzbot/nzbot/pkg/input"
	"github.com/nzbot/nzbot/pkg/listener"
	"github.com/nzbot/nzbot/pkg/monitor"
	"github.com/nzbot/nzbot/pkg/process"
	"github.com/nzbot/nzbot/pkg/stop"
	"github.com/nzbot/nzbot/pkg/strategy"
	"github.com/nzbot/nzbot/pkg/vision/ocr"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		strategyPath = flag.String("strategy", "", "策略文件路径 (JSON)")
		rounds       = flag.Int("rounds", 0, "连续执行局数 (0 使用配置值)")
		backendName  = flag.String("backend", "", "输入后端: robot / relative")
		debugMode    = flag.Bool("debug", false, "调试模式 (打印 OCR 结果)")
		saveConfig   = flag.Bool("save", false, "保存当前参数到配置文件")
		showVersion  = flag.Bool("version", false, "显示版本信息")
		showHelp     = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}
	if *showHelp {
		printHelp()
		return
	}

	// 加载配置，命令行参数优先级高于配置文件
	manager := config.NewManager()
	cfg, err := manager.Load()
	if err != nil {
		fmt.Printf("[WARN] 加载配置失败: %v\n", err)
	}
	if *strategyPath != "" {
		cfg.StrategyPath = *strategyPath
	}
	if *rounds > 0 {
		cfg.Rounds = *rounds
	}
	if *backendName != "" {
		cfg.InputBackend = *backendName
	}
	if *debugMode {
		cfg.Debug = true
	}

	if *saveConfig {
		if err := manager.Save(cfg); err != nil {
			fmt.Printf("[WARN] 保存配置失败: %v\n", err)
		} else {
			fmt.Printf("配置已保存到 %s\n", manager.GetConfigDir())
		}
	}

	log := logger.Default()
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if cfg.LogFile != "" {
		if err := log.SetFile(true, cfg.LogFile); err != nil {
			fmt.Printf("[WARN] 打开日志文件失败: %v\n", err)
		}
	}
	defer log.Close()

	if err := run(cfg); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(cfg *config.BotConfig) error {
	// 策略文件
	strat, err := strategy.Load(cfg.StrategyPath)
	if err != nil {
		return err
	}
	logger.Info("策略: %s (难度 %s, 建筑 %d 个, 最大波次 %d)",
		strat.Meta.Name, strat.Meta.Difficulty, len(strat.Buildings), strat.MaxWave())

	// OCR 引擎全程只初始化一次
	if !ocr.IsAvailable() {
		return fmt.Errorf("OCR 模型文件不齐全，请检查 models 目录")
	}
	rec, err := ocr.NewTextRecognizer(cfg.OCR)
	if err != nil {
		return err
	}
	defer rec.Close()

	// 输入后端
	var backend input.Backend
	switch cfg.InputBackend {
	case config.BackendRobot:
		backend = input.NewRobotBackend()
	case config.BackendRelative:
		backend = input.NewRelativeBackend(input.NewRobotBackend())
	default:
		return fmt.Errorf("未知输入后端: %q", cfg.InputBackend)
	}
	ctrl := input.NewController(backend)

	stopFlag := stop.Default()
	mon := monitor.New(rec, cfg.Monitor, stopFlag)
	exec := executor.New(ctrl, rec, mon, stopFlag, executor.Options{
		Keys:  cfg.Keys,
		Debug: cfg.Debug,
	})

	// 游戏进程检查
	if cfg.ProcessName != "" {
		if game, ok := process.WaitForGame(cfg.ProcessName, stopFlag); ok {
			if err := process.ActivateWindow(game.PID); err != nil {
				logger.Warn("%v", err)
			}
		}
	}

	// 热键监听
	hotkeys := listener.New(stopFlag, ctrl)
	go hotkeys.Run()
	defer hotkeys.Close()

	// Ctrl+C 等同 F10
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		logger.Info("收到退出信号，请求停止")
		stopFlag.Request()
		hotkeys.Close()
		os.Exit(0)
	}()

	logger.Info("就绪：按 F9 开始执行 %d 局，按 F10 停止", cfg.Rounds)
	<-hotkeys.Start

	mon.Start()
	defer mon.Stop()

	succeeded, failed := 0, 0
	for round := 1; round <= cfg.Rounds; round++ {
		if stopFlag.ShouldStop() {
			logger.Info("收到停止信号，中断剩余 %d 局", cfg.Rounds-round+1)
			break
		}

		logger.Info("===== 第 %d/%d 局 =====", round, cfg.Rounds)
		mon.Reset()

		if err := exec.StartGameWithStrategy(strat); err != nil {
			failed++
			logger.Error("第 %d 局失败: %v", round, err)
			continue
		}
		if stopFlag.ShouldStop() {
			break
		}
		succeeded++
		logger.Info("第 %d 局完成", round)
	}

	logger.Info("执行结束：成功 %d 局，失败 %d 局", succeeded, failed)
	return nil
}

func printVersion() {
	fmt.Printf("nzbot %s\n", Version)
	fmt.Printf("  构建时间: %s\n", BuildTime)
	fmt.Printf("  提交: %s\n", GitCommit)
}

func printHelp() {
	fmt.Println("nzbot - 逆战：未来 塔防自动化")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  nzbot -strategy <策略文件> [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("热键:")
	fmt.Println("  F9   开始执行")
	fmt.Println("  F10  停止（协作式，当前动作完成后退出）")
}
