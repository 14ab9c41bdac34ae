// Package constraints 发布全部硬约束
//
// 质量周末的耦合（周六 LQ ∧ 周日 L）通过具体化布尔变量编码；这些变量同时
// 交给目标构建器复用，避免重复创建。
package constraints

import (
	"math"

	"github.com/salsa/salsa/pkg/cpsat"
	"github.com/salsa/salsa/pkg/engine/variables"
	"github.com/salsa/salsa/pkg/model"
)

// 约束类别名，进入报告的实例计数
const (
	ClassUnicity          = "unicity"
	ClassWeeklyCap        = "weekly_cap"
	ClassConsecutiveCap   = "consecutive_cap"
	ClassLQQuota          = "lq_quota"
	ClassWeekShift        = "week_shift"
	ClassWorkingDayLabels = "working_day_labels"
	ClassNoThreeFree      = "no_three_consecutive_free"
	ClassQualityWeekend   = "quality_weekend"
	ClassSaturdayL        = "saturday_l"
	ClassWeeklyFreeDays   = "weekly_free_days"
	ClassFirstDay         = "first_day_not_free"
	ClassSundayQuota      = "sunday_quota"
)

// QW 某个周日对应的质量周末具体化变量
type QW struct {
	Sunday int
	Var    cpsat.BoolVar
}

// Artifacts 约束阶段产出的可复用结构
type Artifacts struct {
	QualityWeekends map[int][]QW
	FreeDay         map[int]map[int]cpsat.BoolVar // worker -> day -> (该日为休息日)
	Counts          map[string]int
}

// Apply 为所有存在引用变量的 (员工, 天, 周) 发布硬约束
func Apply(a *variables.Arena, p *model.Problem) *Artifacts {
	art := &Artifacts{
		QualityWeekends: make(map[int][]QW),
		FreeDay:         make(map[int]map[int]cpsat.BoolVar),
		Counts:          make(map[string]int),
	}

	unicity(a, p, art)
	weeklyCap(a, p, art)
	consecutiveCap(a, p, art)
	lqQuota(a, p, art)
	weekShift(a, p, art)
	workingDayLabels(a, p, art)
	noThreeConsecutiveFree(a, p, art)
	qualityWeekend(a, p, art)
	saturdayL(a, p, art)
	weeklyFreeDays(a, p, art)
	firstDayNotFree(a, p, art)
	sundayQuota(a, p, art)

	return art
}

// unicity 每名员工每天恰好一个变量为 1
func unicity(a *variables.Arena, p *model.Problem, art *Artifacts) {
	for _, w := range p.WorkersComplete {
		for _, d := range p.Horizon.Days {
			lits := a.AllDayLits(w, d)
			if len(lits) > 0 {
				a.Model.AddExactlyOne(lits)
				art.Counts[ClassUnicity]++
			}
		}
	}
}

// weeklyCap 每周工作天数不超过合同上限，关店日不计入该周
func weeklyCap(a *variables.Arena, p *model.Problem, art *Artifacts) {
	for _, w := range p.Workers {
		ct := p.Employees[w].Contract.ContractType
		for _, week := range p.Horizon.Weeks() {
			var lits []cpsat.Lit
			for _, d := range p.Horizon.WeekToDays[week] {
				lits = append(lits, a.DayLits(w, d, model.WorkingShifts)...)
			}
			if len(lits) > ct {
				a.Model.AddSumAtMost(lits, ct)
				art.Counts[ClassWeeklyCap]++
			}
		}
	}
}

// consecutiveCap 任意 maxi+1 天滑动窗口内工作日不超过 maxi
func consecutiveCap(a *variables.Arena, p *model.Problem, art *Artifacts) {
	h := p.Horizon
	maxi := p.Settings.MaxContinuousWorkingDays
	if maxi <= 0 {
		maxi = 6
	}
	for _, w := range p.Workers {
		for d := h.First(); d <= h.Last()-maxi; d++ {
			var lits []cpsat.Lit
			for i := 0; i <= maxi; i++ {
				lits = append(lits, a.DayLits(w, d+i, model.WorkingShifts)...)
			}
			if len(lits) > maxi {
				a.Model.AddSumAtMost(lits, maxi)
				art.Counts[ClassConsecutiveCap]++
			}
		}
	}
}

// lqQuota 每名员工全年 LQ 不少于 c2d
func lqQuota(a *variables.Arena, p *model.Problem, art *Artifacts) {
	for _, w := range p.Workers {
		c2d := p.Employees[w].Contract.C2D
		if c2d <= 0 {
			continue
		}
		var lits []cpsat.Lit
		for _, d := range p.Employees[w].WorkingDays.Sorted() {
			if lit, ok := a.Lit(w, d, model.LabelLQ); ok {
				lits = append(lits, lit)
			}
		}
		a.Model.AddSumAtLeast(lits, c2d)
		art.Counts[ClassLQQuota]++
	}
}

// weekShift 周内仅可使用日历中观察到的班次；两班均未观察到时不加约束
func weekShift(a *variables.Arena, p *model.Problem, art *Artifacts) {
	for _, w := range p.Workers {
		e := p.Employees[w]
		for _, week := range p.Horizon.Weeks() {
			pref := e.WeekShift[week]
			var forbid model.Label
			switch {
			case pref.M && !pref.T:
				forbid = model.LabelT
			case pref.T && !pref.M:
				forbid = model.LabelM
			default:
				continue
			}
			for _, d := range p.Horizon.WeekToDays[week] {
				if !e.WorkingDays.Has(d) {
					continue
				}
				if v, ok := a.Var(w, d, forbid); ok {
					a.Model.Fix(v, false)
					art.Counts[ClassWeekShift]++
				}
			}
		}
	}
}

// workingDayLabels 可排工作日上恰好取 {M,T,L,LQ} 之一；完整周期员工取 {M,T} 之一
func workingDayLabels(a *variables.Arena, p *model.Problem, art *Artifacts) {
	for _, w := range p.WorkersComplete {
		e := p.Employees[w]
		labels := model.CheckShifts
		if e.IsCompleteCycle() {
			labels = model.WorkingShifts
		}
		for _, d := range e.WorkingDays.Sorted() {
			lits := a.DayLits(w, d, labels)
			if len(lits) > 0 {
				a.Model.AddExactlyOne(lits)
				art.Counts[ClassWorkingDayLabels]++
			}
		}
	}
}

// FreeDayVar 该日为休息日（{L,F,LQ} 之一）的具体化变量，带缓存
func (art *Artifacts) FreeDayVar(a *variables.Arena, w, d int) (cpsat.BoolVar, bool) {
	if byDay, ok := art.FreeDay[w]; ok {
		if v, ok := byDay[d]; ok {
			return v, true
		}
	}
	lits := a.DayLits(w, d, model.FreeShifts)
	if len(lits) == 0 {
		return 0, false
	}
	z := a.Model.NewBoolVar()
	a.Model.AddReifiedOr(z, lits...)
	if art.FreeDay[w] == nil {
		art.FreeDay[w] = make(map[int]cpsat.BoolVar)
	}
	art.FreeDay[w][d] = z
	return z, true
}

// noThreeConsecutiveFree 连续三个可排工作日不可全为休息日
func noThreeConsecutiveFree(a *variables.Arena, p *model.Problem, art *Artifacts) {
	for _, w := range p.Workers {
		days := p.Employees[w].WorkingDays.Sorted()
		for i := 0; i+2 < len(days); i++ {
			d1, d2, d3 := days[i], days[i+1], days[i+2]
			if d2 != d1+1 || d3 != d2+1 {
				continue
			}
			z1, ok1 := art.FreeDayVar(a, w, d1)
			z2, ok2 := art.FreeDayVar(a, w, d2)
			z3, ok3 := art.FreeDayVar(a, w, d3)
			if ok1 && ok2 && ok3 {
				a.Model.AddClause(z1.Lit().Not(), z2.Lit().Not(), z3.Lit().Not())
				art.Counts[ClassNoThreeFree]++
			}
		}
	}
}

// qualityWeekend 两天质量周末的耦合与 LQ 合法性
//
// F_special_day 为真时，周末计数额外接受 (LQ,F) 与 (F,L) 组合，但 LQ 的
// 合法性判定始终沿用周日必须为 L 的分支。
func qualityWeekend(a *variables.Arena, p *model.Problem, art *Artifacts) {
	h := p.Horizon
	for _, w := range p.Workers {
		e := p.Employees[w]
		ct := e.Contract.ContractType
		if ct != 4 && ct != 5 && ct != 6 {
			continue
		}

		var qwLits []cpsat.Lit
		for _, d := range h.Days {
			if !h.IsSunday(d) {
				continue
			}
			if !p.Settings.FSpecialDay {
				if !e.WorkingDays.Has(d) || !e.WorkingDays.Has(d-1) {
					continue
				}
			} else {
				okSun := e.WorkingDays.Has(d) || h.ClosedHolidays.Has(d)
				okSat := e.WorkingDays.Has(d-1) || h.ClosedHolidays.Has(d-1)
				if !okSun || !okSat {
					continue
				}
			}

			qw := buildQualityWeekend(a, p, w, d)
			if qw == 0 {
				continue
			}
			art.QualityWeekends[w] = append(art.QualityWeekends[w], QW{Sunday: d, Var: qw})
			qwLits = append(qwLits, qw.Lit())
			art.Counts[ClassQualityWeekend]++
		}

		if c2d := e.Contract.C2D; c2d > 0 {
			a.Model.AddSumAtLeast(qwLits, c2d)
			art.Counts[ClassQualityWeekend]++
		}

		// LQ 只能作为质量周末的周六半边出现
		for _, d := range e.WorkingDays.Sorted() {
			lq, ok := a.Lit(w, d, model.LabelLQ)
			if !ok {
				continue
			}
			sunL, okSun := a.Lit(w, d+1, model.LabelL)
			if okSun && e.WorkingDays.Has(d+1) && h.IsSunday(d+1) {
				a.Model.AddImplication(lq, sunL)
			} else {
				a.Model.Fix(lq.Var(), false)
			}
			art.Counts[ClassQualityWeekend]++
		}
	}
}

// buildQualityWeekend 周日 d 的质量周末具体化变量，无法成对时返回 0
func buildQualityWeekend(a *variables.Arena, p *model.Problem, w, d int) cpsat.BoolVar {
	m := a.Model
	satLQ, okSatLQ := a.Lit(w, d-1, model.LabelLQ)
	sunL, okSunL := a.Lit(w, d, model.LabelL)

	if !p.Settings.FSpecialDay {
		if !okSatLQ || !okSunL {
			return 0
		}
		qw := m.NewBoolVar()
		m.AddReifiedAnd(qw, satLQ, sunL)
		return qw
	}

	satF, okSatF := a.Lit(w, d-1, model.LabelF)
	sunF, okSunF := a.Lit(w, d, model.LabelF)

	var pairs []cpsat.Lit
	addPair := func(x, y cpsat.Lit, ok bool) {
		if !ok {
			return
		}
		z := m.NewBoolVar()
		m.AddReifiedAnd(z, x, y)
		pairs = append(pairs, z.Lit())
	}
	addPair(satLQ, sunL, okSatLQ && okSunL)
	addPair(satLQ, sunF, okSatLQ && okSunF)
	addPair(satF, sunL, okSatF && okSunL)
	if len(pairs) == 0 {
		return 0
	}
	qw := m.NewBoolVar()
	m.AddReifiedOr(qw, pairs...)
	return qw
}

// saturdayL 周六与周日不可同时取 L，成对休息必须走 LQ 编码
func saturdayL(a *variables.Arena, p *model.Problem, art *Artifacts) {
	h := p.Horizon
	for _, w := range p.Workers {
		e := p.Employees[w]
		for _, d := range e.WorkingDays.Sorted() {
			if !h.IsSaturday(d) || !e.WorkingDays.Has(d+1) {
				continue
			}
			satL, ok1 := a.Lit(w, d, model.LabelL)
			sunL, ok2 := a.Lit(w, d+1, model.LabelL)
			if ok1 && ok2 {
				a.Model.AddSumAtMost([]cpsat.Lit{satL, sunL}, 1)
				art.Counts[ClassSaturdayL]++
			}
		}
	}
}

// weeklyFreeDays 每周休息日数量约束
//
// 含入离职日的周按 n/7·2 的比例折算；常规周要求 2（单日周要求 1），并在
// 该周已有固定 L/LQ 更多时抬高要求。与边界行为保持一致：要求为 2 仅在周
// 内可排天数大于 2 时发布，为 1 仅在大于 1 时发布。
func weeklyFreeDays(a *variables.Arena, p *model.Problem, art *Artifacts) {
	h := p.Horizon
	for _, w := range p.Workers {
		e := p.Employees[w]
		for _, week := range h.Weeks() {
			weekDays := h.WeekToDaysAll[week]

			var workDays []int
			for _, d := range weekDays {
				if e.WorkingDays.Has(d) {
					workDays = append(workDays, d)
				}
			}
			n := len(workDays)
			if n == 0 {
				continue
			}

			var lits []cpsat.Lit
			for _, d := range workDays {
				lits = append(lits, a.DayLits(w, d, []model.Label{model.LabelL, model.LabelLQ})...)
			}

			proportional := false
			for _, d := range weekDays {
				if (e.AdmissionDay > 0 && d == e.AdmissionDay) || (e.DismissalDay > 0 && d == e.DismissalDay) {
					proportional = true
					break
				}
			}

			var required int
			if proportional {
				ratio := float64(n) / 7.0 * 2.0
				if p.Settings.AdmissaoProporcional == "ceil" {
					required = int(math.Ceil(ratio))
				} else {
					required = int(math.Floor(ratio))
				}
			} else if n >= 2 {
				required = 2
			} else {
				required = 1
			}

			fixed := 0
			for _, d := range weekDays {
				if e.FixedDaysOff.Has(d) || e.FixedLQs.Has(d) {
					fixed++
				}
			}
			raised := required < fixed
			if raised {
				required = fixed
			}

			switch {
			case proportional || raised:
				a.Model.AddSumEqual(lits, required)
			case required == 2 && n > 2:
				a.Model.AddSumEqual(lits, 2)
			case required == 1 && n > 1:
				a.Model.AddSumEqual(lits, 1)
			default:
				continue
			}
			art.Counts[ClassWeeklyFreeDays]++
		}
	}
}

// firstDayNotFree 区间中途入职的员工首个在册日必须上班
func firstDayNotFree(a *variables.Arena, p *model.Problem, art *Artifacts) {
	earliest := 0
	for _, w := range p.Workers {
		fd := p.Employees[w].FirstDay
		if fd > 0 && (earliest == 0 || fd < earliest) {
			earliest = fd
		}
	}
	if earliest == 0 {
		return
	}
	for _, w := range p.Workers {
		e := p.Employees[w]
		if e.FirstDay <= earliest || !e.WorkingDays.Has(e.FirstDay) {
			continue
		}
		lits := a.DayLits(w, e.FirstDay, model.WorkingShifts)
		if len(lits) > 0 {
			a.Model.AddSumEqual(lits, 1)
			art.Counts[ClassFirstDay]++
		}
	}
}

// sundayQuota 周日休息不少于 total_l_dom
func sundayQuota(a *variables.Arena, p *model.Problem, art *Artifacts) {
	for _, w := range p.Workers {
		quota := p.Employees[w].Contract.TotalLDom
		if quota <= 0 {
			continue
		}
		var lits []cpsat.Lit
		for _, d := range p.Horizon.Sundays.Sorted() {
			if !p.Employees[w].WorkingDays.Has(d) {
				continue
			}
			if lit, ok := a.Lit(w, d, model.LabelL); ok {
				lits = append(lits, lit)
			}
		}
		a.Model.AddSumAtLeast(lits, quota)
		art.Counts[ClassSundayQuota]++
	}
}
