package input

import (
	"testing"

	"github.com/salsa/salsa/pkg/errors"
	"github.com/salsa/salsa/pkg/model"
)

func minimalRaw() *model.RawTables {
	return &model.RawTables{
		Calendario: &model.RawTable{
			Columns: []string{"COLABORADOR", "DATA", "WD", "DIA_TIPO", "TIPO_TURNO", "WW"},
			Rows: [][]string{
				{"101", "2024-01-01", "Mon", "", "M", "1"},
				{"abc", "2024-01-02", "Tue", "", "M", "1"},  // 矩阵号非法，应丢弃
				{"101", "not-a-date", "Wed", "", "M", "1"}, // 日期非法，应丢弃
			},
		},
		Estimativas: &model.RawTable{
			Columns: []string{"DATA", "TURNO", "MEDIA_TURNO", "MAX_TURNO", "MIN_TURNO", "PESS_OBJ", "SD_TURNO", "FK_TIPO_POSTO", "WDAY"},
			Rows: [][]string{
				{"2024-01-01", "M", "1.5", "3", "1", "2", "0.4", "loja", "1"},
			},
		},
		Colaborador: &model.RawTable{
			Columns: []string{"MATRICULA", "C2D", "DATA_ADMISSAO", "DATA_DEMISSAO", "L_DOM_SALSA", "L_TOTAL"},
			Rows: [][]string{
				{"101", "2", "", "", "1", "10"},
			},
		},
	}
}

func TestNormalize_LowercasesAndCoerces(t *testing.T) {
	tables, err := Normalize(minimalRaw())
	if err != nil {
		t.Fatalf("Normalize 失败: %v", err)
	}

	if len(tables.Calendario) != 1 {
		t.Fatalf("calendario 行数 = %d, 期望 1（两行非法被丢弃）", len(tables.Calendario))
	}
	row := tables.Calendario[0]
	if row.Employee != 101 || row.DayOfYear != 1 || row.ShiftLabel != "M" || row.Week != 1 {
		t.Errorf("规整后的行不符合预期: %+v", row)
	}

	if len(tables.Estimativas) != 1 {
		t.Fatalf("estimativas 行数 = %d", len(tables.Estimativas))
	}
	if tables.Estimativas[0].PessObj != 2 {
		t.Errorf("pess_obj = %v", tables.Estimativas[0].PessObj)
	}

	if len(tables.Colaborador) != 1 {
		t.Fatalf("colaborador 行数 = %d", len(tables.Colaborador))
	}
	emp := tables.Colaborador[0]
	if emp.Matricula != 101 || emp.C2D != 2 || emp.LDomSalsa != 1 || emp.TotalL != 10 {
		t.Errorf("员工行不符合预期: %+v", emp)
	}
	// 缺失的可选列默认 0
	if emp.C3D != 0 || emp.CXX != 0 {
		t.Errorf("可选列应默认 0: %+v", emp)
	}
}

func TestNormalize_MissingTable(t *testing.T) {
	raw := minimalRaw()
	raw.Estimativas = nil

	_, err := Normalize(raw)
	if !errors.Is(err, errors.CodeMissingTable) {
		t.Errorf("期望 MISSING_TABLE, 得到 %v", err)
	}
}

func TestNormalize_MissingColumn(t *testing.T) {
	raw := minimalRaw()
	raw.Calendario.Columns = []string{"COLABORADOR", "DATA", "WD", "DIA_TIPO", "TIPO_TURNO"} // 缺 ww

	_, err := Normalize(raw)
	if !errors.Is(err, errors.CodeMissingColumn) {
		t.Errorf("期望 MISSING_COLUMN, 得到 %v", err)
	}
}
