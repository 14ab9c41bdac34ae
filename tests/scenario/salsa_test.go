// Package scenario 提供端到端场景测试
package scenario

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/salsa/salsa/internal/config"
	"github.com/salsa/salsa/pkg/engine"
	"github.com/salsa/salsa/pkg/errors"
	"github.com/salsa/salsa/pkg/model"
	"github.com/salsa/salsa/pkg/validator"
)

var weekdayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// worker 场景中的一名员工
type worker struct {
	id           int
	contractType int
	totalL       int
	lDomSalsa    int
	c2d          int
	priority     string
	shift        string         // 日历中预置的班次（眼下的周班次可用性来源）
	labels       map[int]string // 按天覆盖 tipo_turno
	admissao     string
}

// fixture 场景输入
type fixture struct {
	days    int
	workers []worker
	pessObj map[model.DayShift]int
	minObj  map[model.DayShift]int
	closed  []int
}

// build 生成三张原始表，2024 年 1 月起始（第 1 天是周一）
func (f fixture) build() *model.RawTables {
	closed := model.NewDaySet(f.closed...)

	cal := &model.RawTable{
		Columns: []string{"colaborador", "data", "wd", "dia_tipo", "tipo_turno", "ww"},
	}
	for _, w := range f.workers {
		for d := 1; d <= f.days; d++ {
			wd := weekdayNames[(d-1)%7]
			dayType := ""
			if wd == "Sun" {
				dayType = "domYf"
			}
			label := w.shift
			if override, ok := w.labels[d]; ok {
				label = override
			}
			if closed.Has(d) {
				label = "F"
			}
			cal.Rows = append(cal.Rows, []string{
				fmt.Sprint(w.id),
				fmt.Sprintf("2024-01-%02d", d),
				wd,
				dayType,
				label,
				fmt.Sprint((d-1)/7 + 1),
			})
		}
	}

	est := &model.RawTable{
		Columns: []string{"data", "turno", "media_turno", "max_turno", "min_turno", "pess_obj", "sd_turno", "fk_tipo_posto", "wday"},
	}
	for d := 1; d <= f.days; d++ {
		for _, s := range []model.Label{model.LabelM, model.LabelT} {
			key := model.DayShift{Day: d, Shift: s}
			est.Rows = append(est.Rows, []string{
				fmt.Sprintf("2024-01-%02d", d),
				string(s),
				"0", "0",
				fmt.Sprint(f.minObj[key]),
				fmt.Sprint(f.pessObj[key]),
				"0", "loja",
				fmt.Sprint((d-1)%7 + 1),
			})
		}
	}

	col := &model.RawTable{
		Columns: []string{"matricula", "ciclo", "tipo_contrato", "l_total", "l_dom", "l_dom_salsa", "c2d", "c3d", "l_d", "cxx", "vz", "l_res", "l_res2", "data_admissao", "data_demissao", "prioridade_folgas"},
	}
	for _, w := range f.workers {
		col.Rows = append(col.Rows, []string{
			fmt.Sprint(w.id), "", fmt.Sprint(w.contractType),
			fmt.Sprint(w.totalL), "0", fmt.Sprint(w.lDomSalsa),
			fmt.Sprint(w.c2d), "0", "0", "0", "0", "0", "0",
			w.admissao, "", w.priority,
		})
	}

	return &model.RawTables{Calendario: cal, Estimativas: est, Colaborador: col}
}

func testEngine() *engine.Engine {
	solver := config.SolverConfig{
		TimeLimit:    60 * time.Second,
		Workers:      1,
		Reproducible: true,
		RandomSeed:   42,
		PhaseSaving:  true,
		Presolve:     true,
	}
	return engine.New(solver, config.DefaultSettings())
}

func mustSolve(t *testing.T, f fixture) (*model.ScheduleMatrix, *model.Report) {
	t.Helper()
	matrix, report, err := testEngine().Solve(context.Background(), f.build())
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}
	if matrix == nil {
		t.Fatal("矩阵不应为空")
	}
	return matrix, report
}

func uniformTargets(days int, value int, except map[int]bool) map[model.DayShift]int {
	out := make(map[model.DayShift]int)
	for d := 1; d <= days; d++ {
		if except[d] {
			continue
		}
		out[model.DayShift{Day: d, Shift: model.LabelM}] = value
		out[model.DayShift{Day: d, Shift: model.LabelT}] = value
	}
	return out
}

func countLabels(matrix *model.ScheduleMatrix, w int, labels ...model.Label) int {
	n := 0
	for _, d := range matrix.Days {
		for _, l := range labels {
			if matrix.Get(w, d) == l {
				n++
			}
		}
	}
	return n
}

// TestScenario1_TwoWorkersOneWeek 两名员工一周排班
func TestScenario1_TwoWorkersOneWeek(t *testing.T) {
	weekend := map[int]bool{6: true, 7: true}
	f := fixture{
		days: 7,
		workers: []worker{
			{id: 101, contractType: 5, totalL: 2, shift: "M"},
			{id: 102, contractType: 5, totalL: 2, shift: "T"},
		},
		pessObj: uniformTargets(7, 1, weekend),
		minObj:  uniformTargets(7, 1, weekend),
	}

	matrix, report := mustSolve(t, f)

	for _, w := range []int{101, 102} {
		if free := countLabels(matrix, w, model.LabelL, model.LabelLQ); free != 2 {
			t.Errorf("员工 %d 休息天数 = %d, 期望 2", w, free)
		}
		if working := countLabels(matrix, w, model.LabelM, model.LabelT); working != 5 {
			t.Errorf("员工 %d 工作天数 = %d, 期望 5", w, working)
		}
		// 周末两天休息只能走 LQ/L 编码
		if matrix.Get(w, 6) != model.LabelLQ || matrix.Get(w, 7) != model.LabelL {
			t.Errorf("员工 %d 周末 = %v/%v, 期望 LQ/L", w, matrix.Get(w, 6), matrix.Get(w, 7))
		}
	}

	// 人数偏差为零
	for d := 1; d <= 5; d++ {
		for _, s := range []model.Label{model.LabelM, model.LabelT} {
			if got := report.DayStaffing[model.DayShift{Day: d, Shift: s}]; got != 1 {
				t.Errorf("第 %d 天 %s 实排 = %d, 期望 1", d, s, got)
			}
		}
	}
}

// TestScenario2_LQForcing 质量周末配额驱动 LQ
func TestScenario2_LQForcing(t *testing.T) {
	targets := make(map[model.DayShift]int)
	for _, d := range []int{1, 2, 3, 4, 5, 8, 9, 10, 11, 12} {
		targets[model.DayShift{Day: d, Shift: model.LabelM}] = 1
	}
	f := fixture{
		days: 14,
		workers: []worker{
			{id: 201, contractType: 5, totalL: 4, c2d: 2, lDomSalsa: 2, shift: "M"},
		},
		pessObj: targets,
	}

	matrix, _ := mustSolve(t, f)

	pairs := 0
	for _, sat := range []int{6, 13} {
		if matrix.Get(201, sat) == model.LabelLQ && matrix.Get(201, sat+1) == model.LabelL {
			pairs++
		}
	}
	if pairs < 2 {
		t.Errorf("质量周末对数 = %d, 期望至少 2", pairs)
	}

	sundaysOff := 0
	for _, sun := range []int{7, 14} {
		if matrix.Get(201, sun) == model.LabelL {
			sundaysOff++
		}
	}
	if sundaysOff < 2 {
		t.Errorf("周日休息数 = %d, 期望至少 2", sundaysOff)
	}
}

// TestScenario3_ClosedHoliday 关店日全员 F
func TestScenario3_ClosedHoliday(t *testing.T) {
	weekendAndClosed := map[int]bool{5: true, 7: true}
	f := fixture{
		days: 7,
		workers: []worker{
			{id: 301, contractType: 5, totalL: 2, shift: "M"},
			{id: 302, contractType: 5, totalL: 2, shift: "T"},
		},
		pessObj: uniformTargets(7, 1, weekendAndClosed),
		closed:  []int{5},
	}

	matrix, _ := mustSolve(t, f)

	for _, w := range []int{301, 302} {
		if matrix.Get(w, 5) != model.LabelF {
			t.Errorf("员工 %d 第 5 天 = %v, 期望 F", w, matrix.Get(w, 5))
		}
		// F 不计入每周休息配额，仍需 2 个 L/LQ
		if free := countLabels(matrix, w, model.LabelL, model.LabelLQ); free != 2 {
			t.Errorf("员工 %d 休息天数 = %d, 期望 2", w, free)
		}
	}
}

// TestScenario4_ManagerKeyholderExclusion 管理员与持钥人的休息重叠
func TestScenario4_ManagerKeyholderExclusion(t *testing.T) {
	f := fixture{
		days: 7,
		workers: []worker{
			{id: 401, contractType: 5, totalL: 2, priority: "manager", shift: "M"},
			{id: 402, contractType: 5, totalL: 2, priority: "manager", shift: "T"},
			{id: 403, contractType: 5, totalL: 2, priority: "keyholder", shift: "M"},
			{id: 404, contractType: 5, totalL: 2, priority: "keyholder", shift: "T"},
			{id: 405, contractType: 5, totalL: 2, shift: "M"},
		},
		pessObj: uniformTargets(7, 2, map[int]bool{6: true, 7: true}),
	}

	matrix, _ := mustSolve(t, f)

	isOff := func(w, d int) bool {
		l := matrix.Get(w, d)
		return l == model.LabelL || l == model.LabelLQ
	}

	bothOffDays := 0
	for d := 1; d <= 7; d++ {
		mgrOff := 0
		for _, w := range []int{401, 402} {
			if isOff(w, d) {
				mgrOff++
			}
		}
		khOff := 0
		for _, w := range []int{403, 404} {
			if isOff(w, d) {
				khOff++
			}
		}
		if mgrOff > 1 {
			t.Errorf("第 %d 天有 %d 名管理员同时休息", d, mgrOff)
		}
		if khOff > 1 {
			t.Errorf("第 %d 天有 %d 名持钥人同时休息", d, khOff)
		}
		if mgrOff > 0 && khOff > 0 {
			bothOffDays++
		}
	}
	// 7 天里 4+4 个休息槽位，最优解只保留一次不可避免的重叠
	if bothOffDays > 1 {
		t.Errorf("管理员与持钥人同日休息 %d 天, 期望至多 1", bothOffDays)
	}
}

// TestScenario5_MidHorizonAdmission 区间中途入职
func TestScenario5_MidHorizonAdmission(t *testing.T) {
	labels := make(map[int]string)
	for d := 1; d <= 16; d++ {
		labels[d] = "-" // 入职前没有排班槽位
	}
	f := fixture{
		days: 28,
		workers: []worker{
			{id: 501, contractType: 5, totalL: 8, lDomSalsa: 1, shift: "M"},
			{id: 502, contractType: 5, totalL: 8, lDomSalsa: 2, c2d: 1, shift: "M",
				labels: labels, admissao: "2024-01-17"},
		},
		pessObj: uniformTargets(28, 1, nil),
	}

	matrix, _ := mustSolve(t, f)

	// 入职日必须是工作班次
	if l := matrix.Get(502, 17); l != model.LabelM && l != model.LabelT {
		t.Errorf("入职日标签 = %v, 期望 M 或 T", l)
	}
	// 入职前的天保持空槽
	for d := 1; d <= 16; d++ {
		if l := matrix.Get(502, d); l != model.LabelEmpty && l != model.LabelV {
			t.Errorf("第 %d 天 = %v, 期望 - 或 V", d, l)
		}
	}
	// 入职周（第 3 周，在册 17..21）按比例只需 floor(5/7·2) = 1 个休息日
	week3Free := 0
	for d := 15; d <= 21; d++ {
		l := matrix.Get(502, d)
		if l == model.LabelL || l == model.LabelLQ {
			week3Free++
		}
	}
	if week3Free != 1 {
		t.Errorf("入职周休息日 = %d, 期望 1", week3Free)
	}
}

// TestScenario6_Infeasible 配额超出物理上限
func TestScenario6_Infeasible(t *testing.T) {
	f := fixture{
		days: 14,
		workers: []worker{
			{id: 601, contractType: 3, totalL: 10, c2d: 5, shift: "M"},
		},
		pessObj: map[model.DayShift]int{},
	}

	matrix, _, err := testEngine().Solve(context.Background(), f.build())
	if !errors.Is(err, errors.CodeNoFeasibleSchedule) {
		t.Errorf("期望 NO_FEASIBLE_SCHEDULE, 得到 %v", err)
	}
	if matrix != nil {
		t.Error("不可行时不应产出矩阵")
	}
}

// TestInvariants_MixedScenario 含关店日、质量周末与周日配额的可行场景，其解
// 必须通过全部硬不变量复核
func TestInvariants_MixedScenario(t *testing.T) {
	weekend := map[int]bool{6: true, 7: true, 13: true, 14: true}
	f := fixture{
		days: 14,
		workers: []worker{
			{id: 701, contractType: 5, totalL: 4, c2d: 1, lDomSalsa: 1, shift: "M"},
			{id: 702, contractType: 5, totalL: 4, shift: "T"},
		},
		pessObj: uniformTargets(14, 1, weekend),
		closed:  []int{10},
	}

	raw := f.build()
	matrix, _, err := testEngine().Solve(context.Background(), raw)
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}

	// 重新走一遍分类管线以获得验证所需的 Problem
	p := reclassify(t, raw)
	conflicts := validator.Validate(matrix, p)
	for _, c := range conflicts {
		t.Errorf("不变量冲突: %+v", c)
	}
}
