// Package engine 排班求解引擎的编排层
//
// 单次调用内各阶段严格顺序执行：规整 → 分类 → 合同折算 → 变量 → 约束 →
// 目标 → 搜索 → 解码。调用之间不共享任何可变状态，每次调用持有自己的
// 模型与求解器实例。
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salsa/salsa/internal/config"
	"github.com/salsa/salsa/pkg/cpsat"
	"github.com/salsa/salsa/pkg/engine/calendar"
	"github.com/salsa/salsa/pkg/engine/constraints"
	"github.com/salsa/salsa/pkg/engine/contract"
	"github.com/salsa/salsa/pkg/engine/decode"
	"github.com/salsa/salsa/pkg/engine/input"
	"github.com/salsa/salsa/pkg/engine/objective"
	"github.com/salsa/salsa/pkg/engine/search"
	"github.com/salsa/salsa/pkg/engine/variables"
	"github.com/salsa/salsa/pkg/errors"
	"github.com/salsa/salsa/pkg/logger"
	"github.com/salsa/salsa/pkg/model"
	"github.com/salsa/salsa/pkg/stats"
)

// Engine 排班引擎
type Engine struct {
	solver    config.SolverConfig
	settings  config.Settings
	processID int
	log       *logger.EngineLogger
}

// Option 引擎选项
type Option func(*Engine)

// WithProcessID 设置进程标识（仅用于日志）
func WithProcessID(id int) Option {
	return func(e *Engine) {
		e.processID = id
	}
}

// New 创建引擎实例
func New(solver config.SolverConfig, settings config.Settings, opts ...Option) *Engine {
	e := &Engine{
		solver:   solver,
		settings: settings,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = logger.NewEngineLogger(e.processID)
	return e
}

// Solve 求解一个排班区间
//
// 返回排班矩阵与求解报告；不可行、超时无解与结构性输入错误以对应错误码
// 返回，此时矩阵为 nil。
func (e *Engine) Solve(ctx context.Context, raw *model.RawTables) (*model.ScheduleMatrix, *model.Report, error) {
	start := time.Now()
	runID := uuid.New().String()

	tables, err := input.Normalize(raw)
	if err != nil {
		return nil, nil, err
	}

	problem, err := calendar.Classify(tables, model.ProblemSettings{
		AdmissaoProporcional:     e.settings.AdmissaoProporcional,
		FSpecialDay:              e.settings.FSpecialDay,
		FreeSundaysPlusC2D:       e.settings.FreeSundaysPlusC2D,
		MaxContinuousWorkingDays: e.settings.MaxContinuousWorkingDays,
	})
	if err != nil {
		return nil, nil, err
	}

	contract.Derive(problem, tables)
	for _, warning := range problem.Warnings {
		logger.Warn().Str("run_id", runID).Msg(warning)
	}

	arena := variables.Build(problem)
	e.log.StartSolve(runID, len(problem.WorkersComplete), problem.Horizon.Len(), arena.Count())

	artifacts := constraints.Apply(arena, problem)
	termCounts := objective.Build(arena, problem, artifacts)

	counts := make(map[string]int, len(artifacts.Counts)+len(termCounts))
	for k, v := range artifacts.Counts {
		counts[k] = v
	}
	for k, v := range termCounts {
		counts[k] = v
	}

	driver := search.NewDriver(e.solver, e.log)
	sol, status, solveStats, err := driver.Run(ctx, arena.Model)

	report := &model.Report{
		RunID:            runID,
		Status:           status.String(),
		WallTime:         time.Since(start),
		Branches:         solveStats.Branches,
		Conflicts:        solveStats.Conflicts,
		ConstraintCounts: counts,
		Solutions:        driver.Solutions(),
		Warnings:         problem.Warnings,
	}

	if err != nil {
		e.log.SolveComplete(runID, status.String(), report.WallTime, 0)
		return nil, report, errors.InternalFault(err.Error())
	}

	switch status {
	case cpsat.StatusOptimal, cpsat.StatusFeasible:
		// 继续解码
	case cpsat.StatusInfeasible:
		e.log.SolveComplete(runID, status.String(), report.WallTime, 0)
		return nil, report, errors.NoFeasibleSchedule("硬约束系统无任何可行赋值")
	case cpsat.StatusModelInvalid:
		e.log.SolveComplete(runID, status.String(), report.WallTime, 0)
		return nil, report, errors.InternalFault("模型结构无效")
	default:
		e.log.SolveComplete(runID, status.String(), report.WallTime, 0)
		return nil, report, errors.NoSolutionWithinBudget(e.solver.TimeLimit.Seconds())
	}

	matrix, err := decode.Decode(arena, problem, sol)
	if err != nil {
		return nil, report, err
	}

	report.Objective = sol.Objective
	report.Bound = sol.Bound
	report.WorkerStats, report.DayStaffing = stats.Summarize(matrix, problem.Horizon)
	report.WallTime = time.Since(start)

	e.log.SolveComplete(runID, status.String(), report.WallTime, sol.Objective)
	return matrix, report, nil
}
