package model

import (
	"fmt"
	"time"
)

// ScheduleMatrix 排班矩阵，一行一个员工
type ScheduleMatrix struct {
	Workers []int
	Days    []int
	Cells   map[int]map[int]Label // worker -> day -> label
}

// NewScheduleMatrix 创建空矩阵
func NewScheduleMatrix(workers, days []int) *ScheduleMatrix {
	m := &ScheduleMatrix{
		Workers: workers,
		Days:    days,
		Cells:   make(map[int]map[int]Label, len(workers)),
	}
	for _, w := range workers {
		m.Cells[w] = make(map[int]Label, len(days))
	}
	return m
}

// Set 写入单元格
func (m *ScheduleMatrix) Set(w, d int, l Label) {
	m.Cells[w][d] = l
}

// Get 读取单元格，缺失返回 "-"
func (m *ScheduleMatrix) Get(w, d int) Label {
	if row, ok := m.Cells[w]; ok {
		if l, ok := row[d]; ok {
			return l
		}
	}
	return LabelEmpty
}

// Row 返回某员工按天升序的标签行
func (m *ScheduleMatrix) Row(w int) []Label {
	out := make([]Label, len(m.Days))
	for i, d := range m.Days {
		out[i] = m.Get(w, d)
	}
	return out
}

// Header 导出表头：Worker, Day_1, …, Day_N
func (m *ScheduleMatrix) Header() []string {
	out := make([]string, 0, len(m.Days)+1)
	out = append(out, "Worker")
	for _, d := range m.Days {
		out = append(out, fmt.Sprintf("Day_%d", d))
	}
	return out
}

// Table 按员工升序导出全部行
func (m *ScheduleMatrix) Table() [][]string {
	out := make([][]string, 0, len(m.Workers))
	for _, w := range m.Workers {
		row := make([]string, 0, len(m.Days)+1)
		row = append(row, fmt.Sprintf("%d", w))
		for _, d := range m.Days {
			row = append(row, string(m.Get(w, d)))
		}
		out = append(out, row)
	}
	return out
}

// WorkerCounters 员工汇总计数
type WorkerCounters struct {
	LCount            int `json:"l_count"`
	LQCount           int `json:"lq_count"`
	SpecialDaysWorked int `json:"special_days_worked"`
	Unassigned        int `json:"unassigned"`
}

// SolutionInfo 求解过程中的一个改进解
type SolutionInfo struct {
	Objective int64         `json:"objective"`
	Bound     int64         `json:"bound"`
	Elapsed   time.Duration `json:"elapsed"`
	Branches  int64         `json:"branches"`
	Conflicts int64         `json:"conflicts"`
}

// Report 求解报告
type Report struct {
	RunID     string        `json:"run_id"`
	Status    string        `json:"status"`
	Objective int64         `json:"objective"`
	Bound     int64         `json:"bound"`
	WallTime  time.Duration `json:"wall_time"`
	Branches  int64         `json:"branches"`
	Conflicts int64         `json:"conflicts"`

	ConstraintCounts map[string]int          `json:"constraint_counts"` // 约束类别 -> 实例数
	WorkerStats      map[int]*WorkerCounters `json:"worker_stats"`
	DayStaffing      map[DayShift]int        `json:"day_staffing"` // 实际排出的人数
	Solutions        []SolutionInfo          `json:"solutions"`
	Warnings         []string                `json:"warnings"`
}
