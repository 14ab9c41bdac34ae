package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/salsa/salsa/pkg/errors"
	"github.com/salsa/salsa/pkg/model"
)

// 按进程与日期范围抓取三张输入表的查询模板
const (
	queryCalendario = `
		SELECT colaborador, data, wd, dia_tipo, tipo_turno, ww,
		       horario, emp, data_admissao, data_demissao
		FROM wfm.calendario
		WHERE fk_processo = $1 AND data BETWEEN $2 AND $3
		ORDER BY colaborador, data`

	queryEstimativas = `
		SELECT data, turno, media_turno, max_turno, min_turno,
		       pess_obj, sd_turno, fk_tipo_posto, wday
		FROM wfm.estimativas
		WHERE fk_processo = $1 AND data BETWEEN $2 AND $3
		ORDER BY data, turno`

	queryColaborador = `
		SELECT matricula, ciclo, tipo_contrato, l_total, l_dom, l_dom_salsa,
		       c2d, c3d, l_d, l_q, cxx, vz, l_res, l_res2, t_lq,
		       data_admissao, data_demissao, prioridade_folgas
		FROM wfm.colaborador
		WHERE fk_processo = $1`
)

// FetchTables 按进程与日期范围抓取三张输入表
//
// 每次调用独立持有自己的连接，不跨线程共享。
func (db *DB) FetchTables(ctx context.Context, processID int, startDate, endDate time.Time) (*model.RawTables, error) {
	calendario, err := db.fetchRaw(ctx, queryCalendario, processID, startDate, endDate)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "抓取 calendario 失败")
	}
	estimativas, err := db.fetchRaw(ctx, queryEstimativas, processID, startDate, endDate)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "抓取 estimativas 失败")
	}
	colaborador, err := db.fetchRaw(ctx, queryColaborador, processID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "抓取 colaborador 失败")
	}

	return &model.RawTables{
		Calendario:  calendario,
		Estimativas: estimativas,
		Colaborador: colaborador,
	}, nil
}

// fetchRaw 执行查询并把结果装入字符串表格
func (db *DB) fetchRaw(ctx context.Context, query string, args ...interface{}) (*model.RawTable, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	table := &model.RawTable{Columns: columns}
	for rows.Next() {
		cells := make([]sql.NullString, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make([]string, len(columns))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, rows.Err()
}
