package model

import "time"

// 输入表名
const (
	TableCalendario  = "calendario"
	TableEstimativas = "estimativas"
	TableColaborador = "colaborador"
)

// RawTable 未经规整的表格数据（列名 + 字符串单元格）
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex 返回列下标，找不到时返回 -1
func (t *RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// RawTables 三张输入表
type RawTables struct {
	Calendario  *RawTable
	Estimativas *RawTable
	Colaborador *RawTable
}

// CalendarRow 规整后的日历行
type CalendarRow struct {
	Employee   int
	Date       time.Time
	DayOfYear  int
	Weekday    string // Mon..Sun
	DayType    string // domYf 表示周日或假日
	ShiftLabel string // M/T/L/L_DOM/A/AP/V/F/-
	Week       int    // ww 列
}

// EstimateRow 规整后的需求估计行
type EstimateRow struct {
	Date       time.Time
	DayOfYear  int
	Shift      Label
	MeanShift  float64
	MaxShift   float64
	MinShift   float64
	PessObj    float64
	SDShift    float64
	PostType   string
	WeekdayNum int
}

// EmployeeRow 规整后的员工合同行
type EmployeeRow struct {
	Matricula    int
	Cycle        string // "Completo" 表示完整周期员工
	ContractType int    // 每周最多工作天数
	TotalL       int
	LDom         int
	LDomSalsa    int
	C2D          int
	C3D          int
	LD           int
	LQOverride   int
	CXX          int
	VZ           int
	LRes         int
	LRes2        int
	TLQ          int
	DataAdmissao *time.Time
	DataDemissao *time.Time
	Prioridade   string // manager / keyholder / 空
}

// Tables 规整后的三张表
type Tables struct {
	Calendario  []CalendarRow
	Estimativas []EstimateRow
	Colaborador []EmployeeRow
}
