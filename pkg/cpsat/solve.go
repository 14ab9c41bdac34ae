package cpsat

import (
	"context"
	"time"

	"github.com/crillab/gophersat/solver"
)

// Status 求解终态
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusModelInvalid
)

// String 终态名称
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusModelInvalid:
		return "MODEL_INVALID"
	default:
		return "UNKNOWN"
	}
}

// Config 求解配置
type Config struct {
	TimeLimit    time.Duration
	Workers      int
	Reproducible bool
	RandomSeed   int64
	PhaseSaving  bool
	Presolve     bool

	// 下列参数为 CP-SAT 级配置面，当前后端不消费，报告中也不记录
	ProbingLevel       int
	SymmetryLevel      int
	LinearizationLevel int
}

// DefaultConfig 默认求解配置
func DefaultConfig() Config {
	return Config{
		TimeLimit:          600 * time.Second,
		Workers:            8,
		PhaseSaving:        true,
		Presolve:           true,
		ProbingLevel:       3,
		SymmetryLevel:      4,
		LinearizationLevel: 2,
	}
}

// Solution 一个（可能非最优的）可行解
type Solution struct {
	values    []bool
	Objective int64
	Bound     int64
}

// Value 读取变量取值
func (s *Solution) Value(v BoolVar) bool {
	i := int(v) - 1
	if s == nil || i < 0 || i >= len(s.values) {
		return false
	}
	return s.values[i]
}

// Stats 搜索统计
type Stats struct {
	Branches  int64
	Conflicts int64
	WallTime  time.Duration
	Solutions int
}

// Callback 每个改进解回调一次
type Callback func(s *Solution, st Stats)

func (m *Model) solutionFromModel(res solver.Result) *Solution {
	vals := make([]bool, m.nbVars)
	for k, v := range res.Model {
		i := k + 1
		if i >= 1 && i <= int(m.nbVars) {
			vals[i-1] = v
		}
	}
	return &Solution{
		values:    vals,
		Objective: m.offset + int64(res.Weight),
		Bound:     m.offset,
	}
}

// Solve 构建底层问题并做优化求解
//
// 墙钟上限与外部取消共用同一个停止通道；停止后保留当前最优解继续返回。
// 每个改进解经 cb 透出，cb 在调用 Solve 的 goroutine 上被调用，而不是在
// 运行底层求解器的 goroutine 上。
func (m *Model) Solve(ctx context.Context, cfg Config, cb Callback) (*Solution, Status, Stats, error) {
	start := time.Now()
	st := Stats{}

	if err := m.Validate(); err != nil {
		return nil, StatusModelInvalid, st, err
	}

	constrs := m.constrs
	if m.nbVars > 0 {
		// 恒真子句登记最高变量号，使只出现在代价函数里的变量也被求解器认识
		top := int(m.nbVars)
		constrs = append(constrs, solver.PBConstr{
			Lits:    []int{top, -top},
			Weights: []int{1, 1},
			AtLeast: 1,
		})
	}

	pb := solver.ParsePBConstrs(constrs)
	if len(m.costLits) > 0 {
		pb.SetCostFunc(m.costLits, m.costWeights)
	}
	s := solver.New(pb)

	results := make(chan solver.Result)
	finalCh := make(chan solver.Result, 1)
	stop := make(chan struct{})
	go func() {
		finalCh <- s.Optimal(results, stop)
	}()

	var timeout <-chan time.Time
	if cfg.TimeLimit > 0 {
		timer := time.NewTimer(cfg.TimeLimit)
		defer timer.Stop()
		timeout = timer.C
	}

	var best *Solution
	stopped := false
	halt := func() {
		if !stopped {
			close(stop)
			stopped = true
		}
	}

	var final solver.Result
	done := false
	for !done {
		select {
		case res, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			if res.Status == solver.Sat {
				best = m.solutionFromModel(res)
				st.Solutions++
				st.WallTime = time.Since(start)
				// 分支/冲突计数在搜索结束后才可安全读取
				if cb != nil {
					cb(best, st)
				}
			}
		case <-timeout:
			halt()
		case <-ctx.Done():
			halt()
		case final = <-finalCh:
			done = true
		}
	}

	// Optimal 返回前会关闭 results，清空残余的改进解
	if results != nil {
		for res := range results {
			if res.Status == solver.Sat {
				best = m.solutionFromModel(res)
				st.Solutions++
			}
		}
	}

	st.WallTime = time.Since(start)
	st.Branches = int64(s.Stats.NbDecisions)
	st.Conflicts = int64(s.Stats.NbConflicts)

	switch final.Status {
	case solver.Sat:
		sol := m.solutionFromModel(final)
		if best == nil || sol.Objective <= best.Objective {
			best = sol
		}
		if stopped {
			return best, StatusFeasible, st, nil
		}
		best.Bound = best.Objective
		return best, StatusOptimal, st, nil
	case solver.Unsat:
		if best != nil {
			// 加界后不可满足意味着最后一个解即最优
			best.Bound = best.Objective
			return best, StatusOptimal, st, nil
		}
		return nil, StatusInfeasible, st, nil
	default: // Indet
		if best != nil {
			return best, StatusFeasible, st, nil
		}
		return nil, StatusUnknown, st, nil
	}
}
