package stats

import (
	"testing"

	"github.com/salsa/salsa/pkg/model"
)

func TestSummarize(t *testing.T) {
	h := &model.Horizon{
		Days:        []int{1, 2, 3, 4, 5, 6, 7},
		SpecialDays: model.NewDaySet(7),
	}
	matrix := model.NewScheduleMatrix([]int{101}, h.Days)
	labels := []model.Label{
		model.LabelM, model.LabelM, model.LabelT, model.LabelL,
		model.LabelF, model.LabelLQ, model.LabelM,
	}
	for i, d := range h.Days {
		matrix.Set(101, d, labels[i])
	}

	workerStats, staffing := Summarize(matrix, h)

	c := workerStats[101]
	if c.LCount != 1 || c.LQCount != 1 {
		t.Errorf("L/LQ 计数 = %d/%d", c.LCount, c.LQCount)
	}
	if c.SpecialDaysWorked != 1 {
		t.Errorf("特殊日工作数 = %d, 期望 1（第 7 天）", c.SpecialDaysWorked)
	}
	if c.Unassigned != 0 {
		t.Errorf("未分配数 = %d", c.Unassigned)
	}

	if staffing[model.DayShift{Day: 1, Shift: model.LabelM}] != 1 {
		t.Error("第 1 天 M 实排应为 1")
	}
	if staffing[model.DayShift{Day: 3, Shift: model.LabelT}] != 1 {
		t.Error("第 3 天 T 实排应为 1")
	}
}

func TestFreeDayGini_Balanced(t *testing.T) {
	matrix := model.NewScheduleMatrix([]int{1, 2}, []int{1, 2})
	matrix.Set(1, 1, model.LabelL)
	matrix.Set(1, 2, model.LabelM)
	matrix.Set(2, 1, model.LabelM)
	matrix.Set(2, 2, model.LabelL)

	if g := FreeDayGini(matrix); g != 0 {
		t.Errorf("完全均衡的基尼系数 = %v, 期望 0", g)
	}
}
