// Package cpsat 提供 CP-SAT 风格的布尔模型构建器
//
// 上层以布尔决策变量、线性约束、具体化（reified）布尔结构和加权目标来描述
// 模型；本包将其翻译为 CNF 子句与伪布尔约束，交给 gophersat 的 CDCL 求解器
// 做优化求解。负权目标项通过文字取反加常量偏移归一化为非负代价。
package cpsat

import (
	"fmt"

	"github.com/crillab/gophersat/solver"
)

// BoolVar 布尔决策变量（1 起始的求解器变量号）
type BoolVar int32

// Lit 文字：正数为变量本身，负数为其取反
type Lit int32

// Lit 变量对应的正文字
func (v BoolVar) Lit() Lit {
	return Lit(v)
}

// Not 文字取反
func (l Lit) Not() Lit {
	return -l
}

// Var 文字所属变量
func (l Lit) Var() BoolVar {
	if l < 0 {
		return BoolVar(-l)
	}
	return BoolVar(l)
}

// Term 线性约束中的一项
type Term struct {
	Lit    Lit
	Weight int
}

// Model CP-SAT 风格模型
type Model struct {
	nbVars  int32
	constrs []solver.PBConstr

	costLits    []solver.Lit
	costWeights []int
	offset      int64 // 负权归一化累计的目标偏移
}

// NewModel 创建空模型
func NewModel() *Model {
	return &Model{}
}

// NewBoolVar 创建布尔变量
func (m *Model) NewBoolVar() BoolVar {
	m.nbVars++
	return BoolVar(m.nbVars)
}

// NumVars 变量数量
func (m *Model) NumVars() int {
	return int(m.nbVars)
}

// NumConstraints 约束数量
func (m *Model) NumConstraints() int {
	return len(m.constrs)
}

// Offset 目标常量偏移
func (m *Model) Offset() int64 {
	return m.offset
}

func ints(lits []Lit) []int {
	out := make([]int, len(lits))
	for i, l := range lits {
		out[i] = int(l)
	}
	return out
}

func ones(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

// AddClause 添加子句（至少一个文字为真）
func (m *Model) AddClause(lits ...Lit) {
	if len(lits) == 0 {
		return
	}
	m.constrs = append(m.constrs, solver.PBConstr{
		Lits:    ints(lits),
		Weights: ones(len(lits)),
		AtLeast: 1,
	})
}

// AddImplication a → b
func (m *Model) AddImplication(a, b Lit) {
	m.AddClause(a.Not(), b)
}

// Fix 钉死变量取值
func (m *Model) Fix(v BoolVar, val bool) {
	if val {
		m.AddClause(v.Lit())
	} else {
		m.AddClause(v.Lit().Not())
	}
}

// AddLinearAtLeast Σ w·lit ≥ bound（权重必须为正）
func (m *Model) AddLinearAtLeast(terms []Term, bound int) {
	if bound <= 0 {
		return // 约束恒真
	}
	if len(terms) == 0 {
		if bound > 0 {
			// 无项却要求正下界：不可满足，编码为空子句等价物
			v := m.NewBoolVar()
			m.Fix(v, true)
			m.Fix(v, false)
		}
		return
	}
	lits := make([]int, len(terms))
	weights := make([]int, len(terms))
	for i, t := range terms {
		lits[i] = int(t.Lit)
		weights[i] = t.Weight
	}
	m.constrs = append(m.constrs, solver.PBConstr{Lits: lits, Weights: weights, AtLeast: bound})
}

// AddLinearAtMost Σ w·lit ≤ bound，转写为取反文字的 ≥ 形式
func (m *Model) AddLinearAtMost(terms []Term, bound int) {
	if len(terms) == 0 {
		return
	}
	total := 0
	lits := make([]int, len(terms))
	weights := make([]int, len(terms))
	for i, t := range terms {
		lits[i] = int(t.Lit.Not())
		weights[i] = t.Weight
		total += t.Weight
	}
	atLeast := total - bound
	if atLeast <= 0 {
		return // 约束恒真
	}
	m.constrs = append(m.constrs, solver.PBConstr{Lits: lits, Weights: weights, AtLeast: atLeast})
}

// AddLinearEqual Σ w·lit = bound
func (m *Model) AddLinearEqual(terms []Term, bound int) {
	m.AddLinearAtLeast(terms, bound)
	m.AddLinearAtMost(terms, bound)
}

// AddSumAtLeast Σ lit ≥ bound
func (m *Model) AddSumAtLeast(lits []Lit, bound int) {
	m.AddLinearAtLeast(unitTerms(lits), bound)
}

// AddSumAtMost Σ lit ≤ bound
func (m *Model) AddSumAtMost(lits []Lit, bound int) {
	m.AddLinearAtMost(unitTerms(lits), bound)
}

// AddSumEqual Σ lit = bound
func (m *Model) AddSumEqual(lits []Lit, bound int) {
	m.AddLinearEqual(unitTerms(lits), bound)
}

// AddExactlyOne 恰好一个为真
func (m *Model) AddExactlyOne(lits []Lit) {
	m.AddSumEqual(lits, 1)
}

func unitTerms(lits []Lit) []Term {
	terms := make([]Term, len(lits))
	for i, l := range lits {
		terms[i] = Term{Lit: l, Weight: 1}
	}
	return terms
}

// AddReifiedAnd z ≡ AND(lits)
func (m *Model) AddReifiedAnd(z BoolVar, lits ...Lit) {
	if len(lits) == 0 {
		m.Fix(z, true)
		return
	}
	for _, l := range lits {
		m.AddClause(z.Lit().Not(), l)
	}
	long := make([]Lit, 0, len(lits)+1)
	long = append(long, z.Lit())
	for _, l := range lits {
		long = append(long, l.Not())
	}
	m.AddClause(long...)
}

// AddReifiedOr z ≡ OR(lits)
func (m *Model) AddReifiedOr(z BoolVar, lits ...Lit) {
	if len(lits) == 0 {
		m.Fix(z, false)
		return
	}
	for _, l := range lits {
		m.AddClause(z.Lit(), l.Not())
	}
	long := make([]Lit, 0, len(lits)+1)
	long = append(long, z.Lit().Not())
	long = append(long, lits...)
	m.AddClause(long...)
}

// AddReifiedSumAtLeast z ≡ (Σ lit ≥ k)
//
// 两个方向各编码为一条伪布尔约束：
//
//	z → Σ lit ≥ k      即 Σ lit + k·¬z ≥ k
//	¬z → Σ lit ≤ k−1   即 Σ ¬lit + (n−k+1)·z ≥ n−k+1
func (m *Model) AddReifiedSumAtLeast(z BoolVar, lits []Lit, k int) {
	n := len(lits)
	if k <= 0 {
		m.Fix(z, true)
		return
	}
	if k > n {
		m.Fix(z, false)
		return
	}
	fwd := make([]Term, 0, n+1)
	for _, l := range lits {
		fwd = append(fwd, Term{Lit: l, Weight: 1})
	}
	fwd = append(fwd, Term{Lit: z.Lit().Not(), Weight: k})
	m.AddLinearAtLeast(fwd, k)

	bwd := make([]Term, 0, n+1)
	for _, l := range lits {
		bwd = append(bwd, Term{Lit: l.Not(), Weight: 1})
	}
	bwd = append(bwd, Term{Lit: z.Lit(), Weight: n - k + 1})
	m.AddLinearAtLeast(bwd, n-k+1)
}

// AddReifiedSumIsZero z ≡ (Σ lit = 0)
func (m *Model) AddReifiedSumIsZero(z BoolVar, lits []Lit) {
	if len(lits) == 0 {
		m.Fix(z, true)
		return
	}
	for _, l := range lits {
		m.AddClause(z.Lit().Not(), l.Not())
	}
	long := make([]Lit, 0, len(lits)+1)
	long = append(long, z.Lit())
	long = append(long, lits...)
	m.AddClause(long...)
}

// Slack 二进制加权的非负松弛量，位权 1,2,4,…，末位截短到恰好覆盖上限
type Slack struct {
	bits    []BoolVar
	weights []int
	cap     int
}

// NewSlack 创建可覆盖 [0, maxValue] 的松弛量
func (m *Model) NewSlack(maxValue int) Slack {
	s := Slack{}
	if maxValue <= 0 {
		return s
	}
	for w := 1; s.cap < maxValue; w *= 2 {
		bit := w
		if s.cap+bit > maxValue {
			bit = maxValue - s.cap
		}
		s.bits = append(s.bits, m.NewBoolVar())
		s.weights = append(s.weights, bit)
		s.cap += bit
	}
	return s
}

// Terms 松弛量的各位作为线性项
func (s Slack) Terms() []Term {
	out := make([]Term, len(s.bits))
	for i, b := range s.bits {
		out[i] = Term{Lit: b.Lit(), Weight: s.weights[i]}
	}
	return out
}

// Cap 可表示的最大取值
func (s Slack) Cap() int {
	return s.cap
}

// Minimize 向目标追加一项 weight·lit
//
// 负权通过对文字取反并累计偏移转为非负代价：w·x = −w·¬x + w。
func (m *Model) Minimize(l Lit, weight int64) {
	if weight == 0 {
		return
	}
	if weight < 0 {
		l = l.Not()
		m.offset += weight
		weight = -weight
	}
	m.costLits = append(m.costLits, solver.IntToLit(int32(l)))
	m.costWeights = append(m.costWeights, int(weight))
}

// MinimizeSlack 以单位代价 weight 惩罚松弛量的每一单位
func (m *Model) MinimizeSlack(s Slack, weight int64) {
	for i, b := range s.bits {
		m.Minimize(b.Lit(), weight*int64(s.weights[i]))
	}
}

// Validate 模型结构自检
func (m *Model) Validate() error {
	for _, c := range m.constrs {
		for _, l := range c.Lits {
			v := l
			if v < 0 {
				v = -v
			}
			if v == 0 || v > int(m.nbVars) {
				return fmt.Errorf("约束引用了不存在的变量 %d", l)
			}
		}
	}
	return nil
}
