// Package strategy 定义一局自动化的声明式策略数据模型
//
// 策略以 JSON 文件保存，描述商店购买顺序、建筑摆放、各阶段移动
// 动作等，编辑器和执行器共用同一份结构。模型只承载数据，不包含
// 执行逻辑。
package strategy

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// defaultGridPixelSize 默认网格边长（1920x1080 下的像素）
const defaultGridPixelSize = 64.0

// Meta 策略元信息与网格坐标系参数
type Meta struct {
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"`
	// Screenshot 编辑器用的底图路径
	Screenshot string `json:"screenshot,omitempty"`

	// GridPixelSize 网格到屏幕坐标的换算边长，缺省 64
	GridPixelSize float64 `json:"grid_pixel_size"`
	OffsetX       float64 `json:"offset_x"`
	OffsetY       float64 `json:"offset_y"`
}

// UnmarshalJSON 补默认值：grid_pixel_size 省略或为 0 时取 64
func (m *Meta) UnmarshalJSON(data []byte) error {
	type alias Meta
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.GridPixelSize == 0 {
		a.GridPixelSize = defaultGridPixelSize
	}
	*m = Meta(a)
	return nil
}

// GridToScreen 网格坐标换算为屏幕坐标
func (m *Meta) GridToScreen(gx, gy float64) (int, int) {
	size := m.GridPixelSize
	if size == 0 {
		size = defaultGridPixelSize
	}
	return int(gx*size + m.OffsetX), int(gy*size + m.OffsetY)
}

// ScreenToGrid 屏幕坐标换算为网格坐标
func (m *Meta) ScreenToGrid(x, y int) (float64, float64) {
	size := m.GridPixelSize
	if size == 0 {
		size = defaultGridPixelSize
	}
	return (float64(x) - m.OffsetX) / size, (float64(y) - m.OffsetY) / size
}

// Building 一个待摆放的建筑
type Building struct {
	// ID 策略内唯一标识
	ID   string `json:"id"`
	Name string `json:"name"`
	// TrapKey 陷阱快捷键（如 "5"、"6"）
	TrapKey string `json:"trap_key"`

	// 执行用屏幕坐标
	ScreenX int `json:"screen_x"`
	ScreenY int `json:"screen_y"`
	// 编辑器显示用网格坐标，由屏幕坐标换算得到
	GridX float64 `json:"grid_x"`
	GridY float64 `json:"grid_y"`

	// Wave 目标波次；IsLate 表示等该波的波次标记出现后再摆
	Wave   uint32 `json:"wave"`
	IsLate bool   `json:"is_late"`
}

// SortKey 摆放顺序键：同一波内先摆波前建筑，再摆波后建筑
func (b *Building) SortKey() uint32 {
	key := b.Wave * 2
	if b.IsLate {
		key++
	}
	return key
}

// UpgradeEvent 指定波次对某建筑的升级
type UpgradeEvent struct {
	BuildingID string `json:"building_id"`
	Wave       uint32 `json:"wave"`
	IsLate     bool   `json:"is_late"`
}

// DemolishEvent 指定波次拆除某建筑
type DemolishEvent struct {
	BuildingID string `json:"building_id"`
	Wave       uint32 `json:"wave"`
	IsLate     bool   `json:"is_late"`
}

// MovementPhase 一段具名的移动动作序列
type MovementPhase struct {
	Name string `json:"name"`
	// Trigger 触发时机，与执行器合成的触发名精确匹配，
	// 如 "before_wave_1"、"wait_wave_2"、"during_wave_3"、"after_placement"
	Trigger string       `json:"trigger"`
	Actions []ActionStep `json:"actions"`
}

// Strategy 一局完整策略
type Strategy struct {
	Meta           Meta            `json:"meta"`
	ShopOrder      []string        `json:"shop_order"`
	Buildings      []Building      `json:"buildings"`
	Upgrades       []UpgradeEvent  `json:"upgrades,omitempty"`
	Demolishes     []DemolishEvent `json:"demolishes,omitempty"`
	MovementPhases []MovementPhase `json:"movement_phases,omitempty"`
}

// SortedBuildings 返回按摆放顺序排序的建筑副本
//
// 排序稳定：同键建筑保持文件中的先后顺序。
func (s *Strategy) SortedBuildings() []Building {
	out := make([]Building, len(s.Buildings))
	copy(out, s.Buildings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortKey() < out[j].SortKey()
	})
	return out
}

// PhasesFor 返回触发名精确匹配的所有移动阶段，保持文件顺序
func (s *Strategy) PhasesFor(trigger string) []MovementPhase {
	var out []MovementPhase
	for i := range s.MovementPhases {
		if s.MovementPhases[i].Trigger == trigger {
			out = append(out, s.MovementPhases[i])
		}
	}
	return out
}

// HasLateBuildings 返回策略中是否存在波后摆放的建筑
func (s *Strategy) HasLateBuildings() bool {
	for i := range s.Buildings {
		if s.Buildings[i].IsLate {
			return true
		}
	}
	return false
}

// MaxWave 返回策略涉及的最大波次
func (s *Strategy) MaxWave() uint32 {
	var max uint32
	for i := range s.Buildings {
		if s.Buildings[i].Wave > max {
			max = s.Buildings[i].Wave
		}
	}
	return max
}

// Validate 校验策略的基本合法性
func (s *Strategy) Validate() error {
	seen := make(map[string]bool, len(s.Buildings))
	for i := range s.Buildings {
		b := &s.Buildings[i]
		if b.ID == "" {
			return fmt.Errorf("第 %d 个建筑缺少 id", i+1)
		}
		if seen[b.ID] {
			return fmt.Errorf("建筑 id 重复: %s", b.ID)
		}
		seen[b.ID] = true
		if b.TrapKey == "" {
			return fmt.Errorf("建筑 %s 缺少 trap_key", b.ID)
		}
		if b.Wave == 0 {
			return fmt.Errorf("建筑 %s 的 wave 必须大于 0", b.ID)
		}
	}
	for _, phase := range s.MovementPhases {
		for i := range phase.Actions {
			if err := phase.Actions[i].Validate(); err != nil {
				return fmt.Errorf("阶段 %s 第 %d 步: %w", phase.Name, i+1, err)
			}
		}
	}
	return nil
}

// Load 从 JSON 文件读取策略
func Load(path string) (*Strategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取策略文件失败: %w", err)
	}

	var s Strategy
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("解析策略文件失败: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("策略文件不合法: %w", err)
	}
	return &s, nil
}

// Save 把策略写入 JSON 文件
func Save(s *Strategy, path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化策略失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入策略文件失败: %w", err)
	}
	return nil
}
