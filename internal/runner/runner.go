// Package runner 批处理编排：按进程号逐个执行排班求解
//
// 多个进程可并行，每个进程持有独立的引擎实例与数据源连接；进程之间不共享
// 任何可变状态。
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/salsa/salsa/internal/config"
	"github.com/salsa/salsa/pkg/engine"
	"github.com/salsa/salsa/pkg/logger"
	"github.com/salsa/salsa/pkg/model"
)

// DataSource 三张输入表的抓取接口
type DataSource interface {
	FetchTables(ctx context.Context, processID int, startDate, endDate time.Time) (*model.RawTables, error)
}

// Result 单个进程的执行结果
type Result struct {
	ProcessID int
	Matrix    *model.ScheduleMatrix
	Report    *model.Report
	Err       error
}

// Runner 批处理执行器
type Runner struct {
	cfg      *config.Config
	settings config.Settings
	source   DataSource
}

// New 创建批处理执行器
func New(cfg *config.Config, settings config.Settings, source DataSource) *Runner {
	return &Runner{cfg: cfg, settings: settings, source: source}
}

// Run 并发执行全部进程，同时运行的数量不超过 MaxParallel
func (r *Runner) Run(ctx context.Context, processIDs []int, startDate, endDate time.Time) []Result {
	maxParallel := r.cfg.Runner.MaxParallel
	if maxParallel <= 0 {
		maxParallel = 1
	}

	results := make([]Result, len(processIDs))
	sem := make(chan struct{}, maxParallel)
	var wg sync.WaitGroup

	for i, pid := range processIDs {
		wg.Add(1)
		go func(i, pid int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = r.runOne(ctx, pid, startDate, endDate)
		}(i, pid)
	}
	wg.Wait()

	return results
}

func (r *Runner) runOne(ctx context.Context, processID int, startDate, endDate time.Time) Result {
	log := logger.Get().With().Int("process_id", processID).Logger()
	log.Info().Msg("阶段: data_loading")

	raw, err := r.source.FetchTables(ctx, processID, startDate, endDate)
	if err != nil {
		log.Error().Err(err).Msg("数据装载失败")
		return Result{ProcessID: processID, Err: err}
	}

	log.Info().Msg("阶段: processing")
	eng := engine.New(r.cfg.Solver, r.settings, engine.WithProcessID(processID))
	matrix, report, err := eng.Solve(ctx, raw)
	if err != nil {
		log.Error().Err(err).Msg("排班求解失败")
		return Result{ProcessID: processID, Report: report, Err: err}
	}

	log.Info().
		Str("status", report.Status).
		Int64("objective", report.Objective).
		Dur("wall_time", report.WallTime).
		Msg("进程执行完成")

	return Result{ProcessID: processID, Matrix: matrix, Report: report}
}
