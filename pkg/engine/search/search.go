// Package search 配置并驱动底层优化求解
//
// 改进解回调可能来自求解 goroutine，最优快照在互斥锁下更新；外部取消令牌
// 使搜索提前停止并保留当前最优可行解。
package search

import (
	"context"
	"sync"

	"github.com/salsa/salsa/internal/config"
	"github.com/salsa/salsa/pkg/cpsat"
	"github.com/salsa/salsa/pkg/logger"
	"github.com/salsa/salsa/pkg/model"
)

// Driver 搜索驱动器
type Driver struct {
	cfg config.SolverConfig
	log *logger.EngineLogger

	mu        sync.Mutex
	solutions []model.SolutionInfo
}

// NewDriver 创建搜索驱动器
func NewDriver(cfg config.SolverConfig, log *logger.EngineLogger) *Driver {
	return &Driver{cfg: cfg, log: log}
}

// Solutions 改进解轨迹的快照
func (d *Driver) Solutions() []model.SolutionInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.SolutionInfo, len(d.solutions))
	copy(out, d.solutions)
	return out
}

// Run 调用优化器并收集改进解
func (d *Driver) Run(ctx context.Context, m *cpsat.Model) (*cpsat.Solution, cpsat.Status, cpsat.Stats, error) {
	cfg := cpsat.Config{
		TimeLimit:          d.cfg.TimeLimit,
		Workers:            d.cfg.Workers,
		Reproducible:       d.cfg.Reproducible,
		RandomSeed:         d.cfg.RandomSeed,
		PhaseSaving:        d.cfg.PhaseSaving,
		Presolve:           d.cfg.Presolve,
		ProbingLevel:       d.cfg.ProbingLevel,
		SymmetryLevel:      d.cfg.SymmetryLevel,
		LinearizationLevel: d.cfg.LinearizationLevel,
	}
	if cfg.Reproducible {
		// 可复现模式收缩为单工作器，消除对称解的线程间竞争
		cfg.Workers = 1
	}

	cb := func(s *cpsat.Solution, st cpsat.Stats) {
		d.mu.Lock()
		info := model.SolutionInfo{
			Objective: s.Objective,
			Bound:     s.Bound,
			Elapsed:   st.WallTime,
			Branches:  st.Branches,
			Conflicts: st.Conflicts,
		}
		d.solutions = append(d.solutions, info)
		count := len(d.solutions)
		d.mu.Unlock()

		if d.log != nil {
			d.log.ImprovedSolution(count, s.Objective, s.Bound, st.WallTime)
		}
	}

	return m.Solve(ctx, cfg, cb)
}
