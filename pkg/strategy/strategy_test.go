package strategy

import (
	"path/filepath"
	"testing"
)

func TestSortedBuildings(t *testing.T) {
	s := &Strategy{Buildings: []Building{
		{ID: "a", TrapKey: "1", Wave: 2, IsLate: true},
		{ID: "b", TrapKey: "1", Wave: 1, IsLate: false},
		{ID: "c", TrapKey: "1", Wave: 2, IsLate: false},
		{ID: "d", TrapKey: "1", Wave: 1, IsLate: true},
		{ID: "e", TrapKey: "1", Wave: 1, IsLate: false},
	}}

	sorted := s.SortedBuildings()

	// 波前建筑先于同波的波后建筑，同键保持文件顺序
	wantIDs := []string{"b", "e", "d", "c", "a"}
	for i, want := range wantIDs {
		if sorted[i].ID != want {
			t.Fatalf("排序错误: 位置 %d 期望建筑 %s, 实际 %s", i, want, sorted[i].ID)
		}
	}

	// 原切片不受影响
	if s.Buildings[0].ID != "a" {
		t.Error("排序不应修改原始建筑列表")
	}
}

func TestSortKeyOrdering(t *testing.T) {
	early := Building{Wave: 3, IsLate: false}
	late := Building{Wave: 3, IsLate: true}
	next := Building{Wave: 4, IsLate: false}

	if !(early.SortKey() < late.SortKey() && late.SortKey() < next.SortKey()) {
		t.Errorf("排序键应满足 波前 < 波后 < 下一波: %d %d %d",
			early.SortKey(), late.SortKey(), next.SortKey())
	}
}

func TestGridToScreenRoundTrip(t *testing.T) {
	meta := &Meta{GridPixelSize: 64, OffsetX: 100, OffsetY: 50}

	x, y := meta.GridToScreen(3, 2)
	if x != 292 || y != 178 {
		t.Errorf("网格换算错误: (%d,%d)", x, y)
	}

	gx, gy := meta.ScreenToGrid(x, y)
	if gx != 3 || gy != 2 {
		t.Errorf("逆换算错误: (%f,%f)", gx, gy)
	}
}

func TestPhasesFor(t *testing.T) {
	s := &Strategy{MovementPhases: []MovementPhase{
		{Name: "去高台", Trigger: "before_wave_2"},
		{Name: "巡逻", Trigger: "wait_wave_3"},
		{Name: "二段", Trigger: "before_wave_2"},
	}}

	phases := s.PhasesFor("before_wave_2")
	if len(phases) != 2 || phases[0].Name != "去高台" || phases[1].Name != "二段" {
		t.Errorf("触发名匹配错误: %+v", phases)
	}
	if len(s.PhasesFor("before_wave_9")) != 0 {
		t.Error("无匹配触发名应返回空")
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	s := &Strategy{
		Meta:      Meta{Name: "测试策略", Difficulty: "炼狱", GridPixelSize: 64, OffsetX: 10, OffsetY: 20},
		ShopOrder: []string{"防空导弹", "自修复磁暴塔", "破坏者"},
		Buildings: []Building{
			{ID: "b1", Name: "自修复", TrapKey: "5", ScreenX: 987, ScreenY: 232, Wave: 1},
			{ID: "b2", Name: "破坏者", TrapKey: "6", ScreenX: 923, ScreenY: 316, Wave: 2, IsLate: true},
		},
		Upgrades:   []UpgradeEvent{{BuildingID: "b1", Wave: 3}},
		Demolishes: []DemolishEvent{{BuildingID: "b2", Wave: 5}},
		MovementPhases: []MovementPhase{
			{
				Name:    "开局走位",
				Trigger: "before_wave_2",
				Actions: []ActionStep{
					{Type: ActionPressKey, Key: "w", Duration: 1.5},
					{Type: ActionSendRelative, Dx: 2237},
					{Type: ActionClick},
				},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "strategy.json")
	if err := Save(s, path); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}

	if loaded.Meta.Name != s.Meta.Name || loaded.Meta.Difficulty != "炼狱" {
		t.Errorf("元信息丢失: %+v", loaded.Meta)
	}
	if len(loaded.Buildings) != 2 || !loaded.Buildings[1].IsLate {
		t.Errorf("建筑列表不一致: %+v", loaded.Buildings)
	}
	if len(loaded.ShopOrder) != 3 || loaded.ShopOrder[0] != "防空导弹" {
		t.Errorf("商店顺序不一致: %v", loaded.ShopOrder)
	}
	if len(loaded.Upgrades) != 1 || loaded.Upgrades[0].BuildingID != "b1" {
		t.Errorf("升级事件不一致: %+v", loaded.Upgrades)
	}
	phases := loaded.PhasesFor("before_wave_2")
	if len(phases) != 1 || len(phases[0].Actions) != 3 {
		t.Fatalf("移动阶段不一致: %+v", phases)
	}
	if phases[0].Actions[0].Key != "w" || phases[0].Actions[0].Duration != 1.5 {
		t.Errorf("动作字段不一致: %+v", phases[0].Actions[0])
	}
}

func TestMetaDefaultGridSize(t *testing.T) {
	var m Meta
	if err := m.UnmarshalJSON([]byte(`{"name":"x","difficulty":"普通"}`)); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if m.GridPixelSize != 64 {
		t.Errorf("grid_pixel_size 缺省应为 64, 实际 %f", m.GridPixelSize)
	}
	if m.OffsetX != 0 || m.OffsetY != 0 {
		t.Errorf("偏移缺省应为 0: (%f,%f)", m.OffsetX, m.OffsetY)
	}
}

func TestValidateRejectsBadStrategy(t *testing.T) {
	noID := &Strategy{Buildings: []Building{{TrapKey: "1", Wave: 1}}}
	if noID.Validate() == nil {
		t.Error("缺 id 应校验失败")
	}

	dupID := &Strategy{Buildings: []Building{
		{ID: "x", TrapKey: "1", Wave: 1},
		{ID: "x", TrapKey: "2", Wave: 1},
	}}
	if dupID.Validate() == nil {
		t.Error("id 重复应校验失败")
	}

	noKey := &Strategy{Buildings: []Building{{ID: "x", Wave: 1}}}
	if noKey.Validate() == nil {
		t.Error("缺 trap_key 应校验失败")
	}

	zeroWave := &Strategy{Buildings: []Building{{ID: "x", TrapKey: "1"}}}
	if zeroWave.Validate() == nil {
		t.Error("wave 为 0 应校验失败")
	}

	badStep := &Strategy{MovementPhases: []MovementPhase{
		{Name: "p", Trigger: "before_wave_1", Actions: []ActionStep{{Type: "Fly"}}},
	}}
	if badStep.Validate() == nil {
		t.Error("未知动作类型应校验失败")
	}
}

func TestActionStepValidate(t *testing.T) {
	good := []ActionStep{
		{Type: ActionPressKey, Key: "w", Duration: 1.5},
		{Type: ActionTapKey, Key: "g"},
		{Type: ActionSendRelative, Dx: 100},
		{Type: ActionSleep, Duration: 0.5},
		{Type: ActionClick},
		{Type: ActionMoveTo, X: 0, Y: 0},
		{Type: ActionClickAt, X: 960, Y: 540},
	}
	for _, step := range good {
		if err := step.Validate(); err != nil {
			t.Errorf("合法动作 %q 校验失败: %v", step.Type, err)
		}
	}

	bad := []ActionStep{
		{Type: ActionPressKey, Key: "w"},
		{Type: ActionTapKey},
		{Type: ActionSendRelative},
		{Type: ActionSleep},
	}
	for _, step := range bad {
		if err := step.Validate(); err == nil {
			t.Errorf("非法动作 %q 应校验失败", step.Type)
		}
	}
}

func TestHasLateBuildings(t *testing.T) {
	early := &Strategy{Buildings: []Building{{ID: "a", TrapKey: "1", Wave: 1}}}
	if early.HasLateBuildings() {
		t.Error("无波后建筑时应返回 false")
	}

	late := &Strategy{Buildings: []Building{{ID: "a", TrapKey: "1", Wave: 1, IsLate: true}}}
	if !late.HasLateBuildings() {
		t.Error("存在波后建筑时应返回 true")
	}
}

func TestMaxWave(t *testing.T) {
	s := &Strategy{Buildings: []Building{
		{Wave: 1}, {Wave: 7}, {Wave: 3},
	}}
	if s.MaxWave() != 7 {
		t.Errorf("最大波次应为 7, 实际 %d", s.MaxWave())
	}
}
