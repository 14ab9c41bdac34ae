package variables

import (
	"testing"

	"github.com/salsa/salsa/pkg/model"
)

func smallProblem() *model.Problem {
	h := &model.Horizon{
		Days:           []int{1, 2, 3, 4, 5, 6, 7},
		StartWeekday:   1, // 2024：第 1 天是周一
		Sundays:        model.NewDaySet(7),
		Holidays:       model.NewDaySet(),
		ClosedHolidays: model.NewDaySet(5),
		SpecialDays:    model.NewDaySet(7),
		WeekOf:         map[int]int{1: 1, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1, 7: 1},
		WeekToDaysAll:  map[int][]int{1: {1, 2, 3, 4, 5, 6, 7}},
		WeekToDays:     map[int][]int{1: {1, 2, 3, 4, 6, 7}},
	}
	h.NonHolidays = []int{1, 2, 3, 4, 6, 7}

	e := &model.Employee{
		Matricula:            101,
		FirstDay:             1,
		LastDay:              7,
		EmptyDays:            model.NewDaySet(),
		MissingDays:          model.NewDaySet(2),
		AbsenceDays:          model.NewDaySet(3),
		FixedDaysOff:         model.NewDaySet(),
		FixedLQs:             model.NewDaySet(),
		FreeDayCompleteCycle: model.NewDaySet(),
		WorkingDays:          model.NewDaySet(1, 4, 6, 7),
		WeekShift:            map[int]model.WeekShiftPref{},
	}

	return &model.Problem{
		Horizon:         h,
		Targets:         model.NewTargets(),
		Workers:         []int{101},
		WorkersComplete: []int{101},
		Employees:       map[int]*model.Employee{101: e},
	}
}

func TestBuild_PinnedLabels(t *testing.T) {
	p := smallProblem()
	a := Build(p)

	// 关店日只有 F
	if _, ok := a.Var(101, 5, model.LabelF); !ok {
		t.Error("第 5 天应有 F 变量")
	}
	if _, ok := a.Var(101, 5, model.LabelM); ok {
		t.Error("关店日不应有 M 变量")
	}

	// 不在册日只有 V
	if _, ok := a.Var(101, 2, model.LabelV); !ok {
		t.Error("第 2 天应有 V 变量")
	}
	if _, ok := a.Var(101, 2, model.LabelL); ok {
		t.Error("不在册日不应有 L 变量")
	}

	// 缺勤日只有 A
	if _, ok := a.Var(101, 3, model.LabelA); !ok {
		t.Error("第 3 天应有 A 变量")
	}
}

func TestBuild_LQOnlyOnSaturdayWithSunday(t *testing.T) {
	p := smallProblem()
	a := Build(p)

	if _, ok := a.Var(101, 6, model.LabelLQ); !ok {
		t.Error("周六(第 6 天)应有 LQ 变量")
	}
	for _, d := range []int{1, 4, 7} {
		if _, ok := a.Var(101, d, model.LabelLQ); ok {
			t.Errorf("第 %d 天不应有 LQ 变量", d)
		}
	}
}

func TestBuild_CompleteCycleOnlyWorkingShifts(t *testing.T) {
	p := smallProblem()
	p.Employees[101].Cycle = model.CycleComplete
	p.Employees[101].FreeDayCompleteCycle = model.NewDaySet(4)
	p.Workers = nil

	a := Build(p)

	if _, ok := a.Var(101, 1, model.LabelM); !ok {
		t.Error("完整周期员工应有 M 变量")
	}
	if _, ok := a.Var(101, 1, model.LabelL); ok {
		t.Error("完整周期员工不应有自由 L 变量")
	}
	if _, ok := a.Var(101, 6, model.LabelLQ); ok {
		t.Error("完整周期员工不应有 LQ 变量")
	}
	// 预先固定的休息日得到钉死的 L
	if _, ok := a.Var(101, 4, model.LabelL); !ok {
		t.Error("固定休息日应有钉死的 L 变量")
	}
	if _, ok := a.Var(101, 4, model.LabelM); ok {
		t.Error("固定休息日不应再有 M 变量")
	}
}

func TestBuild_Count(t *testing.T) {
	p := smallProblem()
	a := Build(p)

	// 第 1、4、7 天各 3 个 (M,T,L)，第 6 天 4 个 (M,T,L,LQ)，
	// 第 2、3、5 天各 1 个钉死变量
	expected := 3*3 + 4 + 3
	if a.Count() != expected {
		t.Errorf("变量数 = %d, 期望 %d", a.Count(), expected)
	}
}
