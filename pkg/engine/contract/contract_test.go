package contract

import (
	"testing"

	"github.com/salsa/salsa/pkg/model"
)

func problemWith(workers ...*model.Employee) *model.Problem {
	p := &model.Problem{
		Horizon:   &model.Horizon{Days: make([]int, 28)},
		Employees: make(map[int]*model.Employee),
		Settings:  model.ProblemSettings{AdmissaoProporcional: "floor"},
	}
	for i := range p.Horizon.Days {
		p.Horizon.Days[i] = i + 1
	}
	for _, e := range workers {
		p.Employees[e.Matricula] = e
		p.Workers = append(p.Workers, e.Matricula)
		p.WorkersComplete = append(p.WorkersComplete, e.Matricula)
	}
	return p
}

func TestDerive_LQFormula(t *testing.T) {
	e := &model.Employee{Matricula: 101, FirstDay: 1, LastDay: 364}
	p := problemWith(e)
	tables := &model.Tables{
		Colaborador: []model.EmployeeRow{{
			Matricula:    101,
			ContractType: 5,
			TotalL:       20,
			LDom:         4,
			LDomSalsa:    3,
			C2D:          2,
			C3D:          1,
			LD:           1,
			CXX:          1,
			VZ:           1,
			LRes:         1,
			LRes2:        1,
		}},
	}

	Derive(p, tables)

	c := p.Employees[101].Contract
	// l_q = 20 − 4 − 2 − 1 − 1 − 1 − 1 − 1 − 1 = 8
	if c.LQ != 8 {
		t.Errorf("l_q = %d, 期望 8", c.LQ)
	}
	if c.TLQ != 8+2+1 {
		t.Errorf("t_lq = %d, 期望 11", c.TLQ)
	}
	if c.TotalLDom != 3 {
		t.Errorf("total_l_dom 应取自 l_dom_salsa, 得到 %d", c.TotalLDom)
	}
	if len(p.Workers) != 1 {
		t.Errorf("员工不应被剔除")
	}
}

func TestDerive_NegativeLQWarns(t *testing.T) {
	e := &model.Employee{Matricula: 101, FirstDay: 1, LastDay: 364}
	p := problemWith(e)
	tables := &model.Tables{
		Colaborador: []model.EmployeeRow{{
			Matricula: 101, ContractType: 5, TotalL: 2, LDom: 4,
		}},
	}

	Derive(p, tables)

	if len(p.Warnings) == 0 {
		t.Error("负 l_q 应产生告警")
	}
	if len(p.Workers) != 1 {
		t.Error("负 l_q 只是告警，员工不应被剔除")
	}
}

func TestDerive_InvalidContractDropped(t *testing.T) {
	good := &model.Employee{Matricula: 101, FirstDay: 1, LastDay: 364}
	bad := &model.Employee{Matricula: 102, FirstDay: 1, LastDay: 364}
	p := problemWith(good, bad)
	tables := &model.Tables{
		Colaborador: []model.EmployeeRow{
			{Matricula: 101, ContractType: 5, TotalL: 10},
			{Matricula: 102, ContractType: 5, TotalL: 0},
		},
	}

	Derive(p, tables)

	if len(p.Workers) != 1 || p.Workers[0] != 101 {
		t.Errorf("Workers = %v, 期望只剩 101", p.Workers)
	}
	if len(p.WorkersComplete) != 2 {
		t.Error("被剔除的员工必须留在完整集合中")
	}
}

func TestDerive_Proration(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		first    int
		last     int
		totalL   int
		c2d      int
		expectL  int
		expectC2 int
	}{
		{"半程入职floor", "floor", 15, 28, 8, 2, 4, 1},  // p = 14/28 = 0.5
		{"半程入职ceil", "ceil", 15, 28, 7, 2, 4, 1},   // ceil(3.5)=4, c2d 恒 floor
		{"全程在册不折算", "floor", 1, 364, 8, 2, 8, 2}, // last ≥ 364
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &model.Employee{Matricula: 101, FirstDay: tt.first, LastDay: tt.last}
			p := problemWith(e)
			p.Settings.AdmissaoProporcional = tt.mode
			tables := &model.Tables{
				Colaborador: []model.EmployeeRow{{
					Matricula: 101, ContractType: 5, TotalL: tt.totalL, C2D: tt.c2d,
				}},
			}

			Derive(p, tables)

			c := p.Employees[101].Contract
			if c.TotalL != tt.expectL {
				t.Errorf("total_l = %d, 期望 %d", c.TotalL, tt.expectL)
			}
			if c.C2D != tt.expectC2 {
				t.Errorf("c2d = %d, 期望 %d", c.C2D, tt.expectC2)
			}
		})
	}
}
