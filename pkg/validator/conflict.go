// Package validator 提供排班矩阵的事后验证
package validator

import (
	"fmt"

	"github.com/salsa/salsa/pkg/model"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictLabel       ConflictType = "label"        // 非法标签
	ConflictWeeklyCap   ConflictType = "weekly_cap"   // 超过每周合同上限
	ConflictConsecutive ConflictType = "consecutive"  // 连续工作天数过多
	ConflictLQPlacement ConflictType = "lq_placement" // LQ 不在质量周末位置
	ConflictClosedDay   ConflictType = "closed_day"   // 关店日未取 F
	ConflictThreeFree   ConflictType = "three_free"   // 连续三天休息
	ConflictSundayQuota ConflictType = "sunday_quota" // 周日休息不足
	ConflictLQQuota     ConflictType = "lq_quota"     // 质量周末不足
)

// Conflict 冲突信息
type Conflict struct {
	Type     ConflictType `json:"type"`
	Employee int          `json:"employee"`
	Day      int          `json:"day,omitempty"`
	Message  string       `json:"message"`
}

// Validate 对解码后的矩阵复核全部硬不变量
//
// 求解成功时应返回空切片；任何冲突都说明模型或解码存在缺陷。
func Validate(matrix *model.ScheduleMatrix, p *model.Problem) []Conflict {
	var out []Conflict
	h := p.Horizon

	for _, w := range matrix.Workers {
		for _, d := range matrix.Days {
			l := matrix.Get(w, d)
			if !l.Valid() {
				out = append(out, conflict(ConflictLabel, w, d, fmt.Sprintf("标签 %q 不在字母表中", l)))
			}
			if h.ClosedHolidays.Has(d) && l != model.LabelF {
				out = append(out, conflict(ConflictClosedDay, w, d, fmt.Sprintf("关店日取了 %q", l)))
			}
			if l == model.LabelLQ {
				if !h.IsSaturday(d) || !h.Contains(d+1) || matrix.Get(w, d+1) != model.LabelL {
					out = append(out, conflict(ConflictLQPlacement, w, d, "LQ 不是质量周末的周六半边"))
				}
			}
		}
	}

	for _, w := range p.Workers {
		e := p.Employees[w]
		out = append(out, weeklyCapConflicts(matrix, h, w, e)...)
		out = append(out, consecutiveConflicts(matrix, h, w, p.Settings.MaxContinuousWorkingDays)...)
		out = append(out, threeFreeConflicts(matrix, w, e)...)

		sundaysOff := 0
		for _, d := range h.Sundays.Sorted() {
			if e.WorkingDays.Has(d) && matrix.Get(w, d) == model.LabelL {
				sundaysOff++
			}
		}
		if sundaysOff < e.Contract.TotalLDom {
			out = append(out, conflict(ConflictSundayQuota, w, 0,
				fmt.Sprintf("周日休息 %d 少于配额 %d", sundaysOff, e.Contract.TotalLDom)))
		}

		lqs := 0
		for _, d := range e.WorkingDays.Sorted() {
			if matrix.Get(w, d) == model.LabelLQ {
				lqs++
			}
		}
		if lqs < e.Contract.C2D {
			out = append(out, conflict(ConflictLQQuota, w, 0,
				fmt.Sprintf("质量周末 %d 少于配额 %d", lqs, e.Contract.C2D)))
		}
	}

	return out
}

func conflict(t ConflictType, w, d int, msg string) Conflict {
	return Conflict{Type: t, Employee: w, Day: d, Message: msg}
}

func weeklyCapConflicts(matrix *model.ScheduleMatrix, h *model.Horizon, w int, e *model.Employee) []Conflict {
	var out []Conflict
	for _, week := range h.Weeks() {
		working := 0
		for _, d := range h.WeekToDays[week] {
			if matrix.Get(w, d).IsWorking() {
				working++
			}
		}
		if e.Contract.ContractType > 0 && working > e.Contract.ContractType {
			out = append(out, conflict(ConflictWeeklyCap, w, 0,
				fmt.Sprintf("第 %d 周工作 %d 天超过合同 %d", week, working, e.Contract.ContractType)))
		}
	}
	return out
}

func consecutiveConflicts(matrix *model.ScheduleMatrix, h *model.Horizon, w, maxi int) []Conflict {
	if maxi <= 0 {
		maxi = 6
	}
	var out []Conflict
	run := 0
	for _, d := range h.Days {
		if matrix.Get(w, d).IsWorking() {
			run++
			if run > maxi {
				out = append(out, conflict(ConflictConsecutive, w, d,
					fmt.Sprintf("连续工作 %d 天超过上限 %d", run, maxi)))
			}
		} else {
			run = 0
		}
	}
	return out
}

func threeFreeConflicts(matrix *model.ScheduleMatrix, w int, e *model.Employee) []Conflict {
	var out []Conflict
	days := e.WorkingDays.Sorted()
	for i := 0; i+2 < len(days); i++ {
		d1, d2, d3 := days[i], days[i+1], days[i+2]
		if d2 != d1+1 || d3 != d2+1 {
			continue
		}
		if matrix.Get(w, d1).IsFree() && matrix.Get(w, d2).IsFree() && matrix.Get(w, d3).IsFree() {
			out = append(out, conflict(ConflictThreeFree, w, d1, "连续三个可排工作日全为休息"))
		}
	}
	return out
}
