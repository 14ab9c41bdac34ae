// Package contract 填充员工合同字段并按入离职区间折算配额
package contract

import (
	"fmt"
	"math"

	"github.com/salsa/salsa/pkg/logger"
	"github.com/salsa/salsa/pkg/model"
)

// Derive 为每名员工计算合同元组
//
// l_q 由总数倒推；合同数据缺失或 total_l ≤ 0 的员工从可优化集合 Workers
// 中剔除（保留在 WorkersComplete 中，仍会得到 F/V/A/L 的固定赋值）。
func Derive(p *model.Problem, tables *model.Tables) {
	rows := make(map[int]*model.EmployeeRow)
	for i := range tables.Colaborador {
		rows[tables.Colaborador[i].Matricula] = &tables.Colaborador[i]
	}

	var kept []int
	for _, w := range p.Workers {
		e := p.Employees[w]
		row := rows[w]
		if row == nil {
			p.Warnings = append(p.Warnings, fmt.Sprintf("员工 %d 无合同数据，移出可优化集合", w))
			continue
		}

		lq := row.TotalL - row.LDom - row.C2D - row.C3D - row.LD - row.CXX - row.VZ - row.LRes - row.LRes2
		if lq < 0 {
			p.Warnings = append(p.Warnings, fmt.Sprintf("员工 %d 倒推出的 l_q 为负: %d", w, lq))
			logger.Warn().Int("employee", w).Int("l_q", lq).Msg("倒推的 l_q 为负")
		}

		e.Contract = model.Contract{
			ContractType: row.ContractType,
			TotalL:       row.TotalL,
			TotalLDom:    row.LDomSalsa,
			C2D:          row.C2D,
			C3D:          row.C3D,
			LD:           row.LD,
			LQ:           lq,
			CXX:          row.CXX,
			TLQ:          lq + row.C2D + row.C3D,
		}

		if row.ContractType <= 0 || row.TotalL <= 0 {
			p.Warnings = append(p.Warnings, fmt.Sprintf("员工 %d 合同无效 (tipo_contrato=%d, l_total=%d)，移出可优化集合", w, row.ContractType, row.TotalL))
			logger.Warn().Int("employee", w).Msg("合同数据无效，员工仅保留固定赋值")
			continue
		}

		prorate(p, e)
		kept = append(kept, w)
	}
	p.Workers = kept
}

// prorate 区间内入离职的配额折算
//
// 比例为在册天数 / 区间天数，夹到 [0,1]；c2d 与 c3d 恒用 floor，其余按
// admissao_proporcional 设置取 floor 或 ceil。
func prorate(p *model.Problem, e *model.Employee) {
	full := p.Horizon.Len()
	if full == 0 || e.LastDay >= 364 {
		return
	}
	span := e.Span()
	ratio := float64(span) / float64(full)
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio == 1 {
		return
	}

	round := func(x int) int {
		if p.Settings.AdmissaoProporcional == "ceil" {
			return int(math.Ceil(ratio * float64(x)))
		}
		return int(math.Floor(ratio * float64(x)))
	}
	floor := func(x int) int {
		return int(math.Floor(ratio * float64(x)))
	}

	c := &e.Contract
	c.TotalL = round(c.TotalL)
	c.TotalLDom = round(c.TotalLDom)
	c.LD = round(c.LD)
	c.LQ = round(c.LQ)
	c.CXX = round(c.CXX)
	c.TLQ = round(c.TLQ)
	c.C2D = floor(c.C2D)
	c.C3D = floor(c.C3D)

	logger.Info().
		Int("employee", e.Matricula).
		Float64("ratio", ratio).
		Int("total_l", c.TotalL).
		Int("c2d", c.C2D).
		Msg("按在册区间折算配额")
}
