// Package stats 提供排班结果的统计汇总
package stats

import (
	"github.com/salsa/salsa/pkg/model"
)

// Summarize 计算每名员工与每个 (天, 班次) 的汇总计数
func Summarize(matrix *model.ScheduleMatrix, horizon *model.Horizon) (map[int]*model.WorkerCounters, map[model.DayShift]int) {
	workerStats := make(map[int]*model.WorkerCounters, len(matrix.Workers))
	staffing := make(map[model.DayShift]int)

	for _, w := range matrix.Workers {
		c := &model.WorkerCounters{}
		for _, d := range matrix.Days {
			switch l := matrix.Get(w, d); l {
			case model.LabelL:
				c.LCount++
			case model.LabelLQ:
				c.LQCount++
			case model.LabelM, model.LabelT:
				if horizon.SpecialDays.Has(d) {
					c.SpecialDaysWorked++
				}
				staffing[model.DayShift{Day: d, Shift: l}]++
			case model.LabelEmpty:
				c.Unassigned++
			}
		}
		workerStats[w] = c
	}

	return workerStats, staffing
}

// FreeDayGini 休息日分布的基尼系数，0 为完全均衡
func FreeDayGini(matrix *model.ScheduleMatrix) float64 {
	var counts []int
	total := 0
	for _, w := range matrix.Workers {
		n := 0
		for _, d := range matrix.Days {
			l := matrix.Get(w, d)
			if l == model.LabelL || l == model.LabelLQ {
				n++
			}
		}
		counts = append(counts, n)
		total += n
	}
	if len(counts) == 0 || total == 0 {
		return 0
	}

	var diffSum float64
	for _, a := range counts {
		for _, b := range counts {
			d := a - b
			if d < 0 {
				d = -d
			}
			diffSum += float64(d)
		}
	}
	n := float64(len(counts))
	mean := float64(total) / n
	return diffSum / (2 * n * n * mean)
}
