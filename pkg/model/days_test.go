package model

import (
	"reflect"
	"testing"
)

func TestDaySet_Basic(t *testing.T) {
	s := NewDaySet(3, 1, 2)

	if s.Len() != 3 {
		t.Errorf("Len() = %d, 期望 3", s.Len())
	}
	if !s.Has(2) {
		t.Error("应该包含 2")
	}
	if s.Has(4) {
		t.Error("不应该包含 4")
	}

	if got := s.Sorted(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("Sorted() = %v", got)
	}
}

func TestDaySet_SetOps(t *testing.T) {
	a := NewDaySet(1, 2, 3, 4)
	b := NewDaySet(3, 4, 5)

	if got := a.Intersect(b).Sorted(); !reflect.DeepEqual(got, []int{3, 4}) {
		t.Errorf("Intersect = %v", got)
	}
	if got := a.Union(b).Sorted(); !reflect.DeepEqual(got, []int{1, 2, 3, 4, 5}) {
		t.Errorf("Union = %v", got)
	}

	c := a.Clone()
	c.Subtract(b)
	if got := c.Sorted(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Subtract = %v", got)
	}
	// 原集合不受影响
	if a.Len() != 4 {
		t.Errorf("Clone 后原集合被修改: %v", a.Sorted())
	}
}

func TestHorizon_DayOfWeek(t *testing.T) {
	// 2024 年 1 月 1 日是周一
	h := &Horizon{StartWeekday: 1}

	tests := []struct {
		day      int
		saturday bool
		sunday   bool
	}{
		{1, false, false},
		{6, true, false},
		{7, false, true},
		{13, true, false},
		{14, false, true},
	}

	for _, tt := range tests {
		if got := h.IsSaturday(tt.day); got != tt.saturday {
			t.Errorf("IsSaturday(%d) = %v", tt.day, got)
		}
		if got := h.IsSunday(tt.day); got != tt.sunday {
			t.Errorf("IsSunday(%d) = %v", tt.day, got)
		}
	}
}

func TestLabel_Sets(t *testing.T) {
	if !LabelM.IsWorking() || !LabelT.IsWorking() {
		t.Error("M/T 应为工作班次")
	}
	if LabelL.IsWorking() {
		t.Error("L 不是工作班次")
	}
	if !LabelLQ.IsFree() || !LabelF.IsFree() {
		t.Error("LQ/F 应为休息标签")
	}
	if !Label("LQ").Valid() {
		t.Error("LQ 应在字母表中")
	}
	if Label("XX").Valid() {
		t.Error("XX 不在字母表中")
	}
}
