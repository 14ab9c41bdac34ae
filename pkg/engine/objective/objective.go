// Package objective 构建加权最小化目标
//
// 整数偏差用二进制加权的松弛位表示；跨员工公平性按比例放大 100 倍后以
// s1·p2 与 s2·p1 的差值比较，避免在模型里出现除法。
package objective

import (
	"github.com/salsa/salsa/pkg/cpsat"
	"github.com/salsa/salsa/pkg/engine/constraints"
	"github.com/salsa/salsa/pkg/engine/variables"
	"github.com/salsa/salsa/pkg/model"
)

// 目标项权重
const (
	WeightOverlap           = 50000 // 管理员/持钥人同日多人休息
	WeightBothOff           = 30000 // 管理员与持钥人同日都有人休息
	WeightStaffingDeviation = 1000  // 人数偏离目标，正负两侧
	WeightZeroWorkers       = 300   // 有需求却无人上班
	WeightShortfall         = 60    // 低于软下限的缺口
	WeightFairness          = 25    // 成对比例失衡，50 分摊到两个方向
	WeightQWSegments        = 8     // 质量周末五段分布偏差
	WeightShiftMix          = 3     // 周内 M/T 混班
	WeightSundaySegments    = 1     // 周日休息五段分布偏差
	BonusConsecutiveFree    = -1    // 连续两天休息的奖励
)

// 目标项类别名，进入报告的实例计数
const (
	TermStaffingDeviation = "staffing_deviation"
	TermZeroWorkers       = "zero_workers"
	TermShortfall         = "min_workers_shortfall"
	TermOverlap           = "manager_keyholder_overlap"
	TermBothOff           = "manager_keyholder_both_off"
	TermConsecutiveFree   = "consecutive_free_bonus"
	TermSundaySegments    = "sunday_segments"
	TermQWSegments        = "quality_weekend_segments"
	TermFairness          = "pairwise_fairness"
	TermShiftMix          = "week_shift_mix"
)

// Build 创建辅助变量并装配目标
func Build(a *variables.Arena, p *model.Problem, art *constraints.Artifacts) map[string]int {
	counts := make(map[string]int)

	staffingDeviation(a, p, counts)
	zeroWorkers(a, p, counts)
	shortfall(a, p, counts)
	managerKeyholder(a, p, counts)
	consecutiveFreeBonus(a, p, art, counts)
	segmentSmoothing(a, p, art, counts)
	pairwiseFairness(a, p, art, counts)
	weekShiftMix(a, p, counts)

	return counts
}

func workingLits(a *variables.Arena, p *model.Problem, d int, s model.Label) []cpsat.Lit {
	var lits []cpsat.Lit
	for _, w := range p.Workers {
		if lit, ok := a.Lit(w, d, s); ok {
			lits = append(lits, lit)
		}
	}
	return lits
}

// staffingDeviation 每个 (天, 工作班次) 的正负偏差
func staffingDeviation(a *variables.Arena, p *model.Problem, counts map[string]int) {
	m := a.Model
	for _, d := range p.Horizon.NonHolidays {
		for _, s := range model.WorkingShifts {
			target := p.Targets.PessObj[model.DayShift{Day: d, Shift: s}]
			lits := workingLits(a, p, d, s)
			n := len(lits)

			if n > target {
				// pos ≥ assigned − target，即 Σpos + Σ¬x ≥ n − target
				pos := m.NewSlack(n - target)
				terms := pos.Terms()
				for _, l := range lits {
					terms = append(terms, cpsat.Term{Lit: l.Not(), Weight: 1})
				}
				m.AddLinearAtLeast(terms, n-target)
				m.MinimizeSlack(pos, WeightStaffingDeviation)
				counts[TermStaffingDeviation]++
			}

			if target > 0 {
				// neg ≥ target − assigned，即 Σneg + Σx ≥ target
				neg := m.NewSlack(target)
				terms := neg.Terms()
				for _, l := range lits {
					terms = append(terms, cpsat.Term{Lit: l, Weight: 1})
				}
				m.AddLinearAtLeast(terms, target)
				m.MinimizeSlack(neg, WeightStaffingDeviation)
				counts[TermStaffingDeviation]++
			}
		}
	}
}

// zeroWorkers 有需求的班次完全无人
func zeroWorkers(a *variables.Arena, p *model.Problem, counts map[string]int) {
	m := a.Model
	for _, d := range p.Horizon.NonHolidays {
		for _, s := range model.WorkingShifts {
			if p.Targets.PessObj[model.DayShift{Day: d, Shift: s}] <= 0 {
				continue
			}
			lits := workingLits(a, p, d, s)
			z := m.NewBoolVar()
			m.AddReifiedSumIsZero(z, lits)
			m.Minimize(z.Lit(), WeightZeroWorkers)
			counts[TermZeroWorkers]++
		}
	}
}

// shortfall 低于软下限的人数缺口
func shortfall(a *variables.Arena, p *model.Problem, counts map[string]int) {
	m := a.Model
	for _, d := range p.Horizon.NonHolidays {
		for _, s := range model.WorkingShifts {
			minW := p.Targets.MinWorkers[model.DayShift{Day: d, Shift: s}]
			if minW <= 0 {
				continue
			}
			lits := workingLits(a, p, d, s)
			sh := m.NewSlack(minW)
			terms := sh.Terms()
			for _, l := range lits {
				terms = append(terms, cpsat.Term{Lit: l, Weight: 1})
			}
			m.AddLinearAtLeast(terms, minW)
			m.MinimizeSlack(sh, WeightShortfall)
			counts[TermShortfall]++
		}
	}
}

// offLits 某员工组在某日的休息文字（L 与 LQ）
func offLits(a *variables.Arena, group []int, d int) []cpsat.Lit {
	var lits []cpsat.Lit
	for _, w := range group {
		if lit, ok := a.Lit(w, d, model.LabelL); ok {
			lits = append(lits, lit)
		}
		if lit, ok := a.Lit(w, d, model.LabelLQ); ok {
			lits = append(lits, lit)
		}
	}
	return lits
}

// managerKeyholder 管理员/持钥人休息重叠与双缺位
func managerKeyholder(a *variables.Arena, p *model.Problem, counts map[string]int) {
	m := a.Model
	managers := p.Managers()
	keyholders := p.Keyholders()
	if len(managers) == 0 && len(keyholders) == 0 {
		return
	}

	for _, d := range p.Horizon.NonHolidays {
		mgrLits := offLits(a, managers, d)
		khLits := offLits(a, keyholders, d)

		var mgrAny, khAny cpsat.BoolVar
		if len(mgrLits) > 0 {
			mgrAny = m.NewBoolVar()
			m.AddReifiedOr(mgrAny, mgrLits...)
		}
		if len(khLits) > 0 {
			khAny = m.NewBoolVar()
			m.AddReifiedOr(khAny, khLits...)
		}

		if len(mgrLits) >= 2 {
			overlap := m.NewBoolVar()
			m.AddReifiedSumAtLeast(overlap, mgrLits, 2)
			m.Minimize(overlap.Lit(), WeightOverlap)
			counts[TermOverlap]++
		}
		if len(khLits) >= 2 {
			overlap := m.NewBoolVar()
			m.AddReifiedSumAtLeast(overlap, khLits, 2)
			m.Minimize(overlap.Lit(), WeightOverlap)
			counts[TermOverlap]++
		}

		if mgrAny != 0 && khAny != 0 {
			both := m.NewBoolVar()
			m.AddReifiedAnd(both, mgrAny.Lit(), khAny.Lit())
			m.Minimize(both.Lit(), WeightBothOff)
			counts[TermBothOff]++
		}
	}
}

// consecutiveFreeBonus 连续两天休息的奖励项
func consecutiveFreeBonus(a *variables.Arena, p *model.Problem, art *constraints.Artifacts, counts map[string]int) {
	m := a.Model
	for _, w := range p.Workers {
		days := p.Employees[w].WorkingDays.Sorted()
		for i := 0; i+1 < len(days); i++ {
			d := days[i]
			if days[i+1] != d+1 {
				continue
			}
			f1, ok1 := art.FreeDayVar(a, w, d)
			f2, ok2 := art.FreeDayVar(a, w, d+1)
			if !ok1 || !ok2 {
				continue
			}
			pair := m.NewBoolVar()
			m.AddReifiedAnd(pair, f1.Lit(), f2.Lit())
			m.Minimize(pair.Lit(), BonusConsecutiveFree)
			counts[TermConsecutiveFree]++
		}
	}
}

// splitSegments 按 array_split 的口径把 n 个元素切成至多 k 段
func splitSegments(items []cpsat.Lit, k int) [][]cpsat.Lit {
	n := len(items)
	if n == 0 {
		return nil
	}
	base, rem := n/k, n%k
	var out [][]cpsat.Lit
	idx := 0
	for i := 0; i < k; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		out = append(out, items[idx:idx+size])
		idx += size
	}
	return out
}

// segmentDeviation 对一段位置发布 |5·count_seg − total| 级别的偏差松弛
//
// 记段内取真数为 c、全部取真数为 t、理想值 ideal ∈ {⌊t/5⌋, ⌊t/5⌋+1}，
// 则 |c − ideal| 由两条伪布尔不等式用松弛位界住：
//
//	5·dev + 4·Σseg¬x + Σrest x ≥ 4·|seg| − 4
//	5·dev + Σrest¬x + 4·Σseg x ≥ |rest| − 5
func segmentDeviation(m *cpsat.Model, seg, rest []cpsat.Lit, weight int64, counts map[string]int, term string) {
	if 4*len(seg)-4 <= 0 && len(rest)-5 <= 0 {
		return // 两条界都恒真，偏差不可能为正
	}
	dev := m.NewSlack(len(seg))

	termsA := scaleTerms(dev.Terms(), 5)
	for _, l := range seg {
		termsA = append(termsA, cpsat.Term{Lit: l.Not(), Weight: 4})
	}
	for _, l := range rest {
		termsA = append(termsA, cpsat.Term{Lit: l, Weight: 1})
	}
	m.AddLinearAtLeast(termsA, 4*len(seg)-4)

	termsB := scaleTerms(dev.Terms(), 5)
	for _, l := range rest {
		termsB = append(termsB, cpsat.Term{Lit: l.Not(), Weight: 1})
	}
	for _, l := range seg {
		termsB = append(termsB, cpsat.Term{Lit: l, Weight: 4})
	}
	m.AddLinearAtLeast(termsB, len(rest)-5)

	m.MinimizeSlack(dev, weight)
	counts[term]++
}

func scaleTerms(terms []cpsat.Term, factor int) []cpsat.Term {
	out := make([]cpsat.Term, len(terms))
	for i, t := range terms {
		out[i] = cpsat.Term{Lit: t.Lit, Weight: t.Weight * factor}
	}
	return out
}

// segmentSmoothing 员工内部的周日休息与质量周末五段分布
func segmentSmoothing(a *variables.Arena, p *model.Problem, art *constraints.Artifacts, counts map[string]int) {
	m := a.Model
	for _, w := range p.Workers {
		e := p.Employees[w]

		var sundayLits []cpsat.Lit
		for _, d := range p.Horizon.Sundays.Sorted() {
			if !e.WorkingDays.Has(d) {
				continue
			}
			if lit, ok := a.Lit(w, d, model.LabelL); ok {
				sundayLits = append(sundayLits, lit)
			}
		}
		smoothLits(m, sundayLits, WeightSundaySegments, counts, TermSundaySegments)

		var qwLits []cpsat.Lit
		for _, qw := range art.QualityWeekends[w] {
			qwLits = append(qwLits, qw.Var.Lit())
		}
		smoothLits(m, qwLits, WeightQWSegments, counts, TermQWSegments)
	}
}

func smoothLits(m *cpsat.Model, lits []cpsat.Lit, weight int64, counts map[string]int, term string) {
	segments := splitSegments(lits, 5)
	if len(segments) < 2 {
		return
	}
	for i, seg := range segments {
		var rest []cpsat.Lit
		for j, other := range segments {
			if j != i {
				rest = append(rest, other...)
			}
		}
		segmentDeviation(m, seg, rest, weight, counts, term)
	}
}

// proportionPercent 在册区间占比放大为 [0,100] 的整数
func proportionPercent(p *model.Problem, w int) int {
	full := p.Horizon.Len()
	if full == 0 {
		return 0
	}
	e := p.Employees[w]
	pct := (e.Span()*100 + full/2) / full
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// pairwiseFairness 成对的比例公平项
//
// diff_pos ≥ s1·p2 − s2·p1 经替换 s1 = n1 − Σ¬off1 后得到全正系数形式：
//
//	D + p1·Σoff2 + p2·Σ¬off1 ≥ p2·n1
func pairwiseFairness(a *variables.Arena, p *model.Problem, art *constraints.Artifacts, counts map[string]int) {
	if p.Horizon.Sundays.Len() == 0 || len(p.Workers) < 2 {
		return
	}
	m := a.Model

	sundayOff := make(map[int][]cpsat.Lit)
	for _, w := range p.Workers {
		for _, d := range p.Horizon.Sundays.Sorted() {
			lits := a.DayLits(w, d, []model.Label{model.LabelL, model.LabelF})
			if len(lits) == 0 {
				continue
			}
			z := m.NewBoolVar()
			m.AddReifiedOr(z, lits...)
			sundayOff[w] = append(sundayOff[w], z.Lit())
		}
	}

	qwOf := make(map[int][]cpsat.Lit)
	for _, w := range p.Workers {
		for _, qw := range art.QualityWeekends[w] {
			qwOf[w] = append(qwOf[w], qw.Var.Lit())
		}
	}

	for i := 0; i < len(p.Workers); i++ {
		for j := i + 1; j < len(p.Workers); j++ {
			w1, w2 := p.Workers[i], p.Workers[j]
			p1, p2 := proportionPercent(p, w1), proportionPercent(p, w2)

			fairnessPair(m, sundayOff[w1], sundayOff[w2], p1, p2, counts)
			fairnessPair(m, qwOf[w1], qwOf[w2], p1, p2, counts)
		}
	}
}

func fairnessPair(m *cpsat.Model, off1, off2 []cpsat.Lit, p1, p2 int, counts map[string]int) {
	if len(off1) == 0 && len(off2) == 0 {
		return
	}
	fairnessDirection(m, off1, off2, p1, p2)
	fairnessDirection(m, off2, off1, p2, p1)
	counts[TermFairness]++
}

// fairnessDirection D ≥ s1·p2 − s2·p1 的松弛及其惩罚
func fairnessDirection(m *cpsat.Model, off1, off2 []cpsat.Lit, p1, p2 int) {
	cap := p2 * len(off1)
	if cap <= 0 {
		return
	}
	d := m.NewSlack(cap)
	terms := d.Terms()
	for _, l := range off2 {
		terms = append(terms, cpsat.Term{Lit: l, Weight: p1})
	}
	for _, l := range off1 {
		terms = append(terms, cpsat.Term{Lit: l.Not(), Weight: p2})
	}
	m.AddLinearAtLeast(terms, p2*len(off1))
	m.MinimizeSlack(d, WeightFairness)
}

// weekShiftMix 一周内同时出现 M 与 T 的混班惩罚
func weekShiftMix(a *variables.Arena, p *model.Problem, counts map[string]int) {
	m := a.Model
	for _, w := range p.Workers {
		e := p.Employees[w]
		for _, week := range p.Horizon.Weeks() {
			var mLits, tLits []cpsat.Lit
			working := 0
			for _, d := range p.Horizon.WeekToDaysAll[week] {
				if !e.WorkingDays.Has(d) {
					continue
				}
				working++
				if lit, ok := a.Lit(w, d, model.LabelM); ok {
					mLits = append(mLits, lit)
				}
				if lit, ok := a.Lit(w, d, model.LabelT); ok {
					tLits = append(tLits, lit)
				}
			}
			if working < 2 || len(mLits) == 0 || len(tLits) == 0 {
				continue
			}
			hasM := m.NewBoolVar()
			m.AddReifiedOr(hasM, mLits...)
			hasT := m.NewBoolVar()
			m.AddReifiedOr(hasT, tLits...)
			mix := m.NewBoolVar()
			m.AddReifiedAnd(mix, hasM.Lit(), hasT.Lit())
			m.Minimize(mix.Lit(), WeightShiftMix)
			counts[TermShiftMix]++
		}
	}
}
