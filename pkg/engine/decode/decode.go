// Package decode 把布尔赋值还原为排班矩阵
package decode

import (
	"fmt"

	"github.com/salsa/salsa/pkg/cpsat"
	"github.com/salsa/salsa/pkg/engine/variables"
	"github.com/salsa/salsa/pkg/errors"
	"github.com/salsa/salsa/pkg/model"
)

// Decode 逐格取出取值为 1 的唯一标签
//
// 发布了唯一性约束后每格必有且仅有一个标签为真；找不到时视为内部
// 不变量被破坏。
func Decode(a *variables.Arena, p *model.Problem, sol *cpsat.Solution) (*model.ScheduleMatrix, error) {
	matrix := model.NewScheduleMatrix(p.WorkersComplete, p.Horizon.Days)

	for _, w := range p.WorkersComplete {
		for _, d := range p.Horizon.Days {
			assigned := model.LabelEmpty
			found := 0
			for _, l := range model.AllLabels {
				v, ok := a.Var(w, d, l)
				if !ok {
					continue
				}
				if sol.Value(v) {
					assigned = l
					found++
				}
			}
			if found == 0 {
				if len(a.AllDayLits(w, d)) > 0 {
					return nil, errors.InternalFault(fmt.Sprintf("员工 %d 第 %d 天没有任何标签为真", w, d))
				}
				// 该格从未创建变量，保持 "-"
			}
			if found > 1 {
				return nil, errors.InternalFault(fmt.Sprintf("员工 %d 第 %d 天有多个标签为真", w, d))
			}
			matrix.Set(w, d, assigned)
		}
	}

	return matrix, nil
}
