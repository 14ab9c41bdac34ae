// Package input 规整三张原始输入表
//
// 列名统一小写并校验必需列；calendario 的 colaborador 与 data 列做类型
// 强转，失败的行直接丢弃。表缺失与列缺失分别以 MISSING_TABLE、
// MISSING_COLUMN 错误拒绝运行。
package input

import (
	"strconv"
	"strings"
	"time"

	"github.com/salsa/salsa/pkg/errors"
	"github.com/salsa/salsa/pkg/logger"
	"github.com/salsa/salsa/pkg/model"
)

// 每张表的必需列
var (
	requiredColaborador = []string{"matricula", "c2d", "data_admissao", "data_demissao", "l_dom_salsa"}
	requiredCalendario  = []string{"colaborador", "data", "wd", "dia_tipo", "tipo_turno", "ww"}
	requiredEstimativas = []string{"data", "turno", "media_turno", "max_turno", "min_turno", "pess_obj", "sd_turno", "fk_tipo_posto", "wday"}
)

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "02/01/2006", time.RFC3339}

// Normalize 校验并规整三张输入表
func Normalize(raw *model.RawTables) (*model.Tables, error) {
	if raw == nil || raw.Calendario == nil {
		return nil, errors.MissingTable(model.TableCalendario)
	}
	if raw.Estimativas == nil {
		return nil, errors.MissingTable(model.TableEstimativas)
	}
	if raw.Colaborador == nil {
		return nil, errors.MissingTable(model.TableColaborador)
	}

	lowerColumns(raw.Calendario)
	lowerColumns(raw.Estimativas)
	lowerColumns(raw.Colaborador)

	if err := checkColumns(model.TableCalendario, raw.Calendario, requiredCalendario); err != nil {
		return nil, err
	}
	if err := checkColumns(model.TableEstimativas, raw.Estimativas, requiredEstimativas); err != nil {
		return nil, err
	}
	if err := checkColumns(model.TableColaborador, raw.Colaborador, requiredColaborador); err != nil {
		return nil, err
	}

	tables := &model.Tables{}
	tables.Calendario = normalizeCalendario(raw.Calendario)
	tables.Estimativas = normalizeEstimativas(raw.Estimativas)
	tables.Colaborador = normalizeColaborador(raw.Colaborador)

	logger.Info().
		Int("calendario", len(tables.Calendario)).
		Int("estimativas", len(tables.Estimativas)).
		Int("colaborador", len(tables.Colaborador)).
		Msg("输入表规整完成")

	return tables, nil
}

func lowerColumns(t *model.RawTable) {
	for i, c := range t.Columns {
		t.Columns[i] = strings.ToLower(strings.TrimSpace(c))
	}
}

func checkColumns(table string, t *model.RawTable, required []string) error {
	for _, c := range required {
		if t.ColumnIndex(c) < 0 {
			return errors.MissingColumn(table, c)
		}
	}
	return nil
}

type rowReader struct {
	table *model.RawTable
	row   []string
}

func (r rowReader) str(col string) string {
	i := r.table.ColumnIndex(col)
	if i < 0 || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

func (r rowReader) intOr(col string, def int) int {
	s := r.str(col)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return def
}

func (r rowReader) floatOr(col string, def float64) float64 {
	s := r.str(col)
	if s == "" {
		return def
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return def
}

func (r rowReader) date(col string) (time.Time, bool) {
	return parseDate(r.str(col))
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func normalizeCalendario(t *model.RawTable) []model.CalendarRow {
	out := make([]model.CalendarRow, 0, len(t.Rows))
	dropped := 0
	for _, row := range t.Rows {
		r := rowReader{table: t, row: row}

		emp, err := strconv.Atoi(r.str("colaborador"))
		if err != nil {
			dropped++
			continue
		}
		date, ok := r.date("data")
		if !ok {
			dropped++
			continue
		}

		out = append(out, model.CalendarRow{
			Employee:   emp,
			Date:       date,
			DayOfYear:  date.YearDay(),
			Weekday:    r.str("wd"),
			DayType:    r.str("dia_tipo"),
			ShiftLabel: strings.ToUpper(r.str("tipo_turno")),
			Week:       r.intOr("ww", 0),
		})
	}
	if dropped > 0 {
		logger.Warn().Int("rows", dropped).Msg("calendario 含无法强转的行，已丢弃")
	}
	return out
}

func normalizeEstimativas(t *model.RawTable) []model.EstimateRow {
	out := make([]model.EstimateRow, 0, len(t.Rows))
	dropped := 0
	for _, row := range t.Rows {
		r := rowReader{table: t, row: row}

		date, ok := r.date("data")
		if !ok {
			dropped++
			continue
		}
		shift := model.Label(strings.ToUpper(r.str("turno")))

		out = append(out, model.EstimateRow{
			Date:       date,
			DayOfYear:  date.YearDay(),
			Shift:      shift,
			MeanShift:  r.floatOr("media_turno", 0),
			MaxShift:   r.floatOr("max_turno", 0),
			MinShift:   r.floatOr("min_turno", 0),
			PessObj:    r.floatOr("pess_obj", 0),
			SDShift:    r.floatOr("sd_turno", 0),
			PostType:   r.str("fk_tipo_posto"),
			WeekdayNum: r.intOr("wday", 0),
		})
	}
	if dropped > 0 {
		logger.Warn().Int("rows", dropped).Msg("estimativas 含无法强转的行，已丢弃")
	}
	return out
}

func normalizeColaborador(t *model.RawTable) []model.EmployeeRow {
	out := make([]model.EmployeeRow, 0, len(t.Rows))
	dropped := 0
	for _, row := range t.Rows {
		r := rowReader{table: t, row: row}

		matricula, err := strconv.Atoi(r.str("matricula"))
		if err != nil {
			dropped++
			continue
		}

		e := model.EmployeeRow{
			Matricula:    matricula,
			Cycle:        r.str("ciclo"),
			ContractType: r.intOr("tipo_contrato", 0),
			TotalL:       r.intOr("l_total", 0),
			LDom:         r.intOr("l_dom", 0),
			LDomSalsa:    r.intOr("l_dom_salsa", 0),
			C2D:          r.intOr("c2d", 0),
			C3D:          r.intOr("c3d", 0),
			LD:           r.intOr("l_d", 0),
			LQOverride:   r.intOr("l_q", 0),
			CXX:          r.intOr("cxx", 0),
			VZ:           r.intOr("vz", 0),
			LRes:         r.intOr("l_res", 0),
			LRes2:        r.intOr("l_res2", 0),
			TLQ:          r.intOr("t_lq", 0),
			Prioridade:   strings.ToLower(r.str("prioridade_folgas")),
		}
		if d, ok := r.date("data_admissao"); ok {
			e.DataAdmissao = &d
		}
		if d, ok := r.date("data_demissao"); ok {
			e.DataDemissao = &d
		}
		out = append(out, e)
	}
	if dropped > 0 {
		logger.Warn().Int("rows", dropped).Msg("colaborador 含无效矩阵号的行，已丢弃")
	}
	return out
}
