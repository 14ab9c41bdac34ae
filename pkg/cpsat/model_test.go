package cpsat

import (
	"context"
	"testing"
	"time"
)

func solveModel(t *testing.T, m *Model) (*Solution, Status) {
	t.Helper()
	sol, status, _, err := m.Solve(context.Background(), Config{TimeLimit: 10 * time.Second, Workers: 1}, nil)
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}
	return sol, status
}

func TestModel_ExactlyOne(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()
	b := m.NewBoolVar()
	c := m.NewBoolVar()
	m.AddExactlyOne([]Lit{a.Lit(), b.Lit(), c.Lit()})
	m.Fix(a, false)
	m.Fix(c, false)

	sol, status := solveModel(t, m)
	if status != StatusOptimal && status != StatusFeasible {
		t.Fatalf("状态 = %v", status)
	}
	if !sol.Value(b) {
		t.Error("b 应为真")
	}
	if sol.Value(a) || sol.Value(c) {
		t.Error("a/c 应为假")
	}
}

func TestModel_Minimize(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()
	b := m.NewBoolVar()
	// a ∨ b，b 更贵
	m.AddClause(a.Lit(), b.Lit())
	m.Minimize(a.Lit(), 1)
	m.Minimize(b.Lit(), 10)

	sol, status := solveModel(t, m)
	if status != StatusOptimal {
		t.Fatalf("状态 = %v, 期望 OPTIMAL", status)
	}
	if !sol.Value(a) || sol.Value(b) {
		t.Errorf("期望 a=true b=false, 得到 a=%v b=%v", sol.Value(a), sol.Value(b))
	}
	if sol.Objective != 1 {
		t.Errorf("目标值 = %d, 期望 1", sol.Objective)
	}
}

func TestModel_NegativeWeight(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()
	// 奖励 a 为真
	m.Minimize(a.Lit(), -5)

	sol, status := solveModel(t, m)
	if status != StatusOptimal {
		t.Fatalf("状态 = %v", status)
	}
	if !sol.Value(a) {
		t.Error("奖励项应驱动 a 为真")
	}
	if sol.Objective != -5 {
		t.Errorf("目标值 = %d, 期望 -5", sol.Objective)
	}
}

func TestModel_ReifiedAnd(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()
	b := m.NewBoolVar()
	z := m.NewBoolVar()
	m.AddReifiedAnd(z, a.Lit(), b.Lit())
	m.Fix(a, true)
	m.Fix(b, true)

	sol, _ := solveModel(t, m)
	if !sol.Value(z) {
		t.Error("a∧b 成立时 z 应为真")
	}

	m2 := NewModel()
	a2 := m2.NewBoolVar()
	b2 := m2.NewBoolVar()
	z2 := m2.NewBoolVar()
	m2.AddReifiedAnd(z2, a2.Lit(), b2.Lit())
	m2.Fix(a2, false)
	m2.Fix(z2, true)

	_, status := func() (s *Solution, st Status) {
		s, st, _, _ = m2.Solve(context.Background(), Config{TimeLimit: 10 * time.Second}, nil)
		return
	}()
	if status != StatusInfeasible {
		t.Errorf("z=1 ∧ a=0 应不可满足, 状态 = %v", status)
	}
}

func TestModel_ReifiedSumAtLeast(t *testing.T) {
	m := NewModel()
	var lits []Lit
	vars := make([]BoolVar, 4)
	for i := range vars {
		vars[i] = m.NewBoolVar()
		lits = append(lits, vars[i].Lit())
	}
	z := m.NewBoolVar()
	m.AddReifiedSumAtLeast(z, lits, 2)

	m.Fix(vars[0], true)
	m.Fix(vars[1], true)
	m.Fix(vars[2], false)
	m.Fix(vars[3], false)

	sol, _ := solveModel(t, m)
	if !sol.Value(z) {
		t.Error("和为 2 时 z 应为真")
	}
}

func TestModel_SlackCoversDeviation(t *testing.T) {
	m := NewModel()
	// 三个工作变量全固定为假，目标下限 2，需要松弛量补齐
	var lits []Lit
	for i := 0; i < 3; i++ {
		v := m.NewBoolVar()
		m.Fix(v, false)
		lits = append(lits, v.Lit())
	}
	s := m.NewSlack(2)
	terms := s.Terms()
	for _, l := range lits {
		terms = append(terms, Term{Lit: l, Weight: 1})
	}
	m.AddLinearAtLeast(terms, 2)
	m.MinimizeSlack(s, 7)

	sol, status := solveModel(t, m)
	if status != StatusOptimal {
		t.Fatalf("状态 = %v", status)
	}
	if sol.Objective != 14 {
		t.Errorf("目标值 = %d, 期望 14 (缺口 2 × 权重 7)", sol.Objective)
	}
}

func TestModel_Infeasible(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()
	m.Fix(a, true)
	m.Fix(a, false)

	_, status, _, err := m.Solve(context.Background(), Config{TimeLimit: 10 * time.Second}, nil)
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}
	if status != StatusInfeasible {
		t.Errorf("状态 = %v, 期望 INFEASIBLE", status)
	}
}
