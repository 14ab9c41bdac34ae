// SALSA 排班引擎批处理入口
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/salsa/salsa/internal/config"
	"github.com/salsa/salsa/internal/database"
	"github.com/salsa/salsa/internal/loader"
	"github.com/salsa/salsa/internal/runner"
	"github.com/salsa/salsa/pkg/logger"
	"github.com/salsa/salsa/pkg/model"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	flagUseDB      bool
	flagUseCSV     bool
	flagCSVDir     string
	flagAlgorithm  string
	flagProcessIDs []int
	flagStartDate  string
	flagEndDate    string
	flagOutputDir  string
)

func main() {
	root := &cobra.Command{
		Use:     "salsa",
		Short:   "SALSA 排班引擎批处理执行器",
		Version: fmt.Sprintf("%s (build %s, commit %s)", Version, BuildTime, GitCommit),
		RunE:    run,
	}

	root.Flags().BoolVar(&flagUseDB, "use-db", false, "从数据库抓取输入表")
	root.Flags().BoolVar(&flagUseCSV, "use-csv", false, "从 CSV 目录装载输入表")
	root.Flags().StringVar(&flagCSVDir, "csv-dir", "data", "CSV 输入目录")
	root.Flags().StringVar(&flagAlgorithm, "algorithm", "salsa", "算法名称")
	root.Flags().IntSliceVar(&flagProcessIDs, "current-process-id", nil, "要执行的进程号，可重复")
	root.Flags().StringVar(&flagStartDate, "start-date", "", "区间开始 yyyy-mm-dd")
	root.Flags().StringVar(&flagEndDate, "end-date", "", "区间结束 yyyy-mm-dd")
	root.Flags().StringVar(&flagOutputDir, "output-dir", "output", "排班矩阵输出目录")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(logger.Config{Level: cfg.App.LogLevel, Format: "console"})

	if flagAlgorithm != "salsa" {
		return fmt.Errorf("未知算法: %s", flagAlgorithm)
	}
	if flagUseDB == flagUseCSV {
		return fmt.Errorf("必须且只能指定 --use-db 与 --use-csv 其中之一")
	}
	if len(flagProcessIDs) == 0 {
		return fmt.Errorf("至少需要一个 --current-process-id")
	}

	startDate, err := time.Parse("2006-01-02", flagStartDate)
	if err != nil {
		return fmt.Errorf("无效的 --start-date: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", flagEndDate)
	if err != nil {
		return fmt.Errorf("无效的 --end-date: %w", err)
	}

	var source runner.DataSource
	if flagUseDB {
		db, err := database.New(&cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		source = db
	} else {
		source = csvSource{dir: flagCSVDir}
	}

	settings := config.LoadSettings()
	r := runner.New(cfg, settings, source)
	results := r.Run(context.Background(), flagProcessIDs, startDate, endDate)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "进程 %d 失败: %v\n", res.ProcessID, res.Err)
			continue
		}
		fmt.Printf("进程 %d: status=%s objective=%d wall_time=%s\n",
			res.ProcessID, res.Report.Status, res.Report.Objective, res.Report.WallTime)
		if err := writeMatrix(flagOutputDir, res.ProcessID, res.Matrix); err != nil {
			fmt.Fprintf(os.Stderr, "进程 %d 矩阵写出失败: %v\n", res.ProcessID, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d 个进程执行失败", failed)
	}
	return nil
}

// writeMatrix 把排班矩阵写成 CSV（Worker, Day_1…Day_N）
func writeMatrix(dir string, processID int, matrix *model.ScheduleMatrix) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("working_schedule_%d.csv", processID)))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(matrix.Header()); err != nil {
		return err
	}
	for _, row := range matrix.Table() {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// csvSource CSV 数据源，目录内容与进程号无关
type csvSource struct {
	dir string
}

func (s csvSource) FetchTables(ctx context.Context, processID int, startDate, endDate time.Time) (*model.RawTables, error) {
	return loader.LoadDir(s.dir)
}
