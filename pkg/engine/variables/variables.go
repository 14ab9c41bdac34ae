// Package variables 为每个合法的 (员工, 天, 标签) 三元组实例化布尔决策变量
//
// 变量存放在按预计算偏移索引的扁平表（arena）里，存在性查询是 O(1) 的
// 位图读取；被预先固定的天只得到一个被钉死为 1 的标签变量。
package variables

import (
	"github.com/salsa/salsa/pkg/cpsat"
	"github.com/salsa/salsa/pkg/model"
)

const numLabels = 8

var labelIndex = map[model.Label]int{
	model.LabelM:     0,
	model.LabelT:     1,
	model.LabelL:     2,
	model.LabelLQ:    3,
	model.LabelF:     4,
	model.LabelA:     5,
	model.LabelV:     6,
	model.LabelEmpty: 7,
}

// Arena 决策变量仓库
type Arena struct {
	Model *cpsat.Model

	horizon   *model.Horizon
	workerIdx map[int]int
	dayIdx    map[int]int
	vars      []cpsat.BoolVar // 0 表示该三元组不存在变量
	count     int
}

// Build 创建全部决策变量
//
// 屏蔽日按固定优先序获得唯一的钉死标签：关店 F、空槽 -、不在册 V、
// 固定 LQ、固定 L、缺勤 A。自由日获得 {M,T,L,LQ}（完整周期员工仅
// {M,T}）；LQ 只在后一天仍在区间内的周六创建。
func Build(p *model.Problem) *Arena {
	h := p.Horizon
	a := &Arena{
		Model:     cpsat.NewModel(),
		horizon:   h,
		workerIdx: make(map[int]int, len(p.WorkersComplete)),
		dayIdx:    make(map[int]int, h.Len()),
	}
	for i, w := range p.WorkersComplete {
		a.workerIdx[w] = i
	}
	for i, d := range h.Days {
		a.dayIdx[d] = i
	}
	a.vars = make([]cpsat.BoolVar, len(p.WorkersComplete)*h.Len()*numLabels)

	for _, w := range p.WorkersComplete {
		e := p.Employees[w]

		fixedOff := e.FixedDaysOff
		if e.IsCompleteCycle() {
			fixedOff = e.FixedDaysOff.Union(e.FreeDayCompleteCycle)
		}

		for _, d := range h.Days {
			switch {
			case h.ClosedHolidays.Has(d):
				a.pin(w, d, model.LabelF)
			case e.EmptyDays.Has(d):
				a.pin(w, d, model.LabelEmpty)
			case e.MissingDays.Has(d):
				a.pin(w, d, model.LabelV)
			case e.FixedLQs.Has(d):
				a.pin(w, d, model.LabelLQ)
			case fixedOff.Has(d):
				a.pin(w, d, model.LabelL)
			case e.AbsenceDays.Has(d):
				a.pin(w, d, model.LabelA)
			case d >= e.FirstDay && d <= e.LastDay:
				a.create(w, d, model.LabelM)
				a.create(w, d, model.LabelT)
				if !e.IsCompleteCycle() {
					a.create(w, d, model.LabelL)
					if h.IsSaturday(d) && h.Contains(d+1) {
						a.create(w, d, model.LabelLQ)
					}
				}
			default:
				// FirstDay/LastDay 之外的天全部落在 missing 掩码中
				a.pin(w, d, model.LabelV)
			}
		}
	}

	return a
}

func (a *Arena) offset(w, d int, l model.Label) (int, bool) {
	wi, ok := a.workerIdx[w]
	if !ok {
		return 0, false
	}
	di, ok := a.dayIdx[d]
	if !ok {
		return 0, false
	}
	return (wi*a.horizon.Len()+di)*numLabels + labelIndex[l], true
}

func (a *Arena) create(w, d int, l model.Label) cpsat.BoolVar {
	off, ok := a.offset(w, d, l)
	if !ok {
		return 0
	}
	v := a.Model.NewBoolVar()
	a.vars[off] = v
	a.count++
	return v
}

func (a *Arena) pin(w, d int, l model.Label) {
	v := a.create(w, d, l)
	if v != 0 {
		a.Model.Fix(v, true)
	}
}

// Var 取变量，第二返回值指示存在性
func (a *Arena) Var(w, d int, l model.Label) (cpsat.BoolVar, bool) {
	off, ok := a.offset(w, d, l)
	if !ok || a.vars[off] == 0 {
		return 0, false
	}
	return a.vars[off], true
}

// Lit 取变量的正文字
func (a *Arena) Lit(w, d int, l model.Label) (cpsat.Lit, bool) {
	v, ok := a.Var(w, d, l)
	if !ok {
		return 0, false
	}
	return v.Lit(), true
}

// DayLits 取某员工某天一组标签的已存在文字
func (a *Arena) DayLits(w, d int, labels []model.Label) []cpsat.Lit {
	var out []cpsat.Lit
	for _, l := range labels {
		if lit, ok := a.Lit(w, d, l); ok {
			out = append(out, lit)
		}
	}
	return out
}

// AllDayLits 某员工某天全部已存在的变量文字
func (a *Arena) AllDayLits(w, d int) []cpsat.Lit {
	return a.DayLits(w, d, model.AllLabels)
}

// Count 已创建的变量数
func (a *Arena) Count() int {
	return a.count
}
