// Package calendar 从规整后的表格派生排班区间与每名员工的可用性
//
// 先抽取周日、假日与关店日并建立 周->天 的商映射，再为每名员工计算六个
// 可用性掩码、首末在册日与每周班次可用性；每周五天缺勤规则（weekly-5）在
// 关店日剔除之前执行，关店日最终从所有掩码中移除。
package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/salsa/salsa/pkg/errors"
	"github.com/salsa/salsa/pkg/logger"
	"github.com/salsa/salsa/pkg/model"
)

// Classify 构建冻结的求解输入（合同字段由 contract 包随后填充）
func Classify(tables *model.Tables, settings model.ProblemSettings) (*model.Problem, error) {
	if len(tables.Calendario) == 0 {
		return nil, errors.ErrEmptyHorizon
	}

	h, err := buildHorizon(tables)
	if err != nil {
		return nil, err
	}

	p := &model.Problem{
		Horizon:   h,
		Targets:   buildTargets(tables, h),
		Settings:  settings,
		Employees: make(map[int]*model.Employee),
	}

	// 员工集合：必须同时出现在 colaborador 与 calendario 中
	inColaborador := make(map[int]*model.EmployeeRow)
	for i := range tables.Colaborador {
		row := &tables.Colaborador[i]
		inColaborador[row.Matricula] = row
	}
	inCalendario := make(map[int]bool)
	for _, row := range tables.Calendario {
		inCalendario[row.Employee] = true
	}

	for w := range inCalendario {
		if _, ok := inColaborador[w]; !ok {
			p.Warnings = append(p.Warnings, fmt.Sprintf("员工 %d 仅出现在 calendario 表中", w))
		}
	}

	var complete []int
	for w, row := range inColaborador {
		if !inCalendario[w] {
			p.Warnings = append(p.Warnings, fmt.Sprintf("员工 %d 仅出现在 colaborador 表中", w))
			continue
		}
		complete = append(complete, w)
		p.Employees[w] = &model.Employee{
			Matricula: w,
			Cycle:     row.Cycle,
			Role:      roleOf(row.Prioridade),
		}
	}
	sort.Ints(complete)
	if len(complete) == 0 {
		return nil, errors.ErrEmptyWorkforce
	}
	p.WorkersComplete = complete

	for _, w := range complete {
		if !p.Employees[w].IsCompleteCycle() {
			p.Workers = append(p.Workers, w)
		}
	}

	classifyEmployees(p, tables)

	logger.Info().
		Int("days", h.Len()).
		Int("workers", len(p.Workers)).
		Int("workers_complete", len(p.WorkersComplete)).
		Int("sundays", h.Sundays.Len()).
		Int("closed_holidays", h.ClosedHolidays.Len()).
		Msg("日历分类完成")

	return p, nil
}

func buildHorizon(tables *model.Tables) (*model.Horizon, error) {
	daySet := model.NewDaySet()
	weekOf := make(map[int]int)
	sundays := model.NewDaySet()
	holidays := model.NewDaySet()
	closed := model.NewDaySet()

	var year int
	for _, row := range tables.Calendario {
		d := row.DayOfYear
		daySet.Add(d)
		if row.Week > 0 {
			weekOf[d] = row.Week
		}
		if row.Weekday == "Sun" {
			sundays.Add(d)
		} else if row.DayType == "domYf" {
			holidays.Add(d)
		}
		if row.ShiftLabel == string(model.LabelF) {
			closed.Add(d)
		}
		if year == 0 {
			year = row.Date.Year()
		}
	}

	days := daySet.Sorted()
	if len(days) == 0 {
		return nil, errors.ErrEmptyHorizon
	}

	h := &model.Horizon{
		Days:           days,
		StartWeekday:   startWeekday(year),
		Sundays:        sundays,
		Holidays:       holidays,
		ClosedHolidays: closed,
		SpecialDays:    sundays.Union(holidays),
		WeekOf:         weekOf,
		WeekToDaysAll:  make(map[int][]int),
		WeekToDays:     make(map[int][]int),
	}

	for _, d := range days {
		w, ok := weekOf[d]
		if !ok {
			continue
		}
		h.WeekToDaysAll[w] = append(h.WeekToDaysAll[w], d)
		if !closed.Has(d) {
			h.WeekToDays[w] = append(h.WeekToDays[w], d)
		}
	}
	for w := range h.WeekToDaysAll {
		sort.Ints(h.WeekToDaysAll[w])
	}
	for w := range h.WeekToDays {
		sort.Ints(h.WeekToDays[w])
	}

	for _, d := range days {
		if !closed.Has(d) {
			h.NonHolidays = append(h.NonHolidays, d)
		}
	}

	return h, nil
}

// startWeekday 该年 1 月 1 日的星期（1=Mon..7=Sun）
func startWeekday(year int) int {
	if year == 0 {
		return 1
	}
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	wd := int(jan1.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

func roleOf(prioridade string) model.Role {
	switch prioridade {
	case "manager", "1":
		return model.RoleManager
	case "keyholder", "2":
		return model.RoleKeyholder
	default:
		return model.RoleNormal
	}
}

func classifyEmployees(p *model.Problem, tables *model.Tables) {
	h := p.Horizon

	rowsByEmployee := make(map[int][]model.CalendarRow)
	for _, row := range tables.Calendario {
		rowsByEmployee[row.Employee] = append(rowsByEmployee[row.Employee], row)
	}
	contractByEmployee := make(map[int]*model.EmployeeRow)
	for i := range tables.Colaborador {
		contractByEmployee[tables.Colaborador[i].Matricula] = &tables.Colaborador[i]
	}

	minDate, maxDate := tables.Calendario[0].Date, tables.Calendario[0].Date
	for _, row := range tables.Calendario {
		if row.Date.Before(minDate) {
			minDate = row.Date
		}
		if row.Date.After(maxDate) {
			maxDate = row.Date
		}
	}

	for _, w := range p.WorkersComplete {
		e := p.Employees[w]
		rows := rowsByEmployee[w]
		contract := contractByEmployee[w]

		e.EmptyDays = model.NewDaySet()
		e.MissingDays = model.NewDaySet()
		e.AbsenceDays = model.NewDaySet()
		e.FixedDaysOff = model.NewDaySet()
		e.FixedLQs = model.NewDaySet()
		e.FreeDayCompleteCycle = model.NewDaySet()
		e.WeekShift = make(map[int]model.WeekShiftPref)

		present := model.NewDaySet()
		first, last := 0, 0
		for _, row := range rows {
			d := row.DayOfYear
			present.Add(d)
			if first == 0 || d < first {
				first = d
			}
			if d > last {
				last = d
			}

			switch row.ShiftLabel {
			case string(model.LabelEmpty):
				e.EmptyDays.Add(d)
			case string(model.LabelV):
				e.MissingDays.Add(d)
			case string(model.LabelA), "AP":
				e.AbsenceDays.Add(d)
			case string(model.LabelL):
				e.FixedDaysOff.Add(d)
				e.FreeDayCompleteCycle.Add(d)
			case "L_DOM":
				e.FreeDayCompleteCycle.Add(d)
			}

			week := row.Week
			pref := e.WeekShift[week]
			switch row.ShiftLabel {
			case string(model.LabelM):
				pref.M = true
			case string(model.LabelT):
				pref.T = true
			}
			e.WeekShift[week] = pref
		}

		// 入离职日：在日历日期范围内才有效，否则记 0
		if contract != nil {
			if contract.DataAdmissao != nil && !contract.DataAdmissao.Before(minDate) && !contract.DataAdmissao.After(maxDate) {
				e.AdmissionDay = contract.DataAdmissao.YearDay()
			}
			if contract.DataDemissao != nil && !contract.DataDemissao.Before(minDate) && !contract.DataDemissao.After(maxDate) {
				e.DismissalDay = contract.DataDemissao.YearDay()
			}
		}

		if e.AdmissionDay > first {
			first = e.AdmissionDay
		}
		if e.DismissalDay > 0 && last > e.DismissalDay {
			last = e.DismissalDay
		}
		e.FirstDay = first
		e.LastDay = last

		// 首日之前、末日之后以及在册却未出现在日历中的天
		for _, d := range h.Days {
			if d < first || d > last {
				e.MissingDays.Add(d)
			} else if !present.Has(d) {
				e.EmptyDays.Add(d)
			}
		}

		if !e.IsCompleteCycle() {
			applyWeeklyAbsenceRule(h, e)
		}

		// 关店日获胜：从每个掩码中剔除
		e.EmptyDays.Subtract(h.ClosedHolidays)
		e.MissingDays.Subtract(h.ClosedHolidays)
		e.AbsenceDays.Subtract(h.ClosedHolidays)
		e.FixedDaysOff.Subtract(h.ClosedHolidays)
		e.FixedLQs.Subtract(h.ClosedHolidays)
		e.FreeDayCompleteCycle.Subtract(h.ClosedHolidays)

		e.WorkingDays = model.NewDaySet()
		for _, d := range h.Days {
			if !e.EmptyDays.Has(d) && !e.AbsenceDays.Has(d) && !e.MissingDays.Has(d) && !h.ClosedHolidays.Has(d) {
				e.WorkingDays.Add(d)
			}
		}
		if e.WorkingDays.Len() == 0 {
			p.Warnings = append(p.Warnings, fmt.Sprintf("员工 %d 分类后没有任何可排班天", w))
		}
	}
}

// applyWeeklyAbsenceRule 每周五天缺勤规则
//
// 一周缺勤达到 5 天视为整周休假：取该周最晚的两个非关店日，若恰为周六与
// 周日则编码为质量周末（周六 LQ、周日 L），否则两天都固定为 L；被改写的
// 天从缺勤集中移除。
func applyWeeklyAbsenceRule(h *model.Horizon, e *model.Employee) {
	for _, week := range h.Weeks() {
		days := h.WeekToDaysAll[week]
		if len(days) < 6 {
			continue
		}

		absences := 0
		for _, d := range days {
			if e.AbsenceDays.Has(d) {
				absences++
			}
		}
		if absences < 5 {
			continue
		}

		var open []int
		for _, d := range days {
			if !h.ClosedHolidays.Has(d) {
				open = append(open, d)
			}
		}
		if len(open) < 2 {
			continue
		}
		l2, l1 := open[len(open)-2], open[len(open)-1]

		if h.IsSaturday(l2) && h.IsSunday(l1) && l1 == l2+1 {
			e.FixedLQs.Add(l2)
			e.FixedDaysOff.Add(l1)
		} else {
			e.FixedDaysOff.Add(l2)
			e.FixedDaysOff.Add(l1)
		}
		e.AbsenceDays.Remove(l2)
		e.AbsenceDays.Remove(l1)
	}
}

func buildTargets(tables *model.Tables, h *model.Horizon) *model.Targets {
	t := model.NewTargets()
	for _, row := range tables.Estimativas {
		if !h.Contains(row.DayOfYear) {
			continue
		}
		if row.Shift != model.LabelM && row.Shift != model.LabelT {
			continue
		}
		key := model.DayShift{Day: row.DayOfYear, Shift: row.Shift}
		t.PessObj[key] = roundNonNegative(row.PessObj)
		t.MinWorkers[key] = roundNonNegative(row.MinShift)
		t.MaxWorkers[key] = roundNonNegative(row.MaxShift)
	}
	return t
}

func roundNonNegative(f float64) int {
	if f <= 0 {
		return 0
	}
	return int(f + 0.5)
}
