// Package loader 从 CSV 文件装载三张输入表
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/salsa/salsa/pkg/logger"
	"github.com/salsa/salsa/pkg/model"
)

// 约定的文件名
const (
	FileCalendario  = "matriz_calendario.csv"
	FileEstimativas = "matriz_estimativas.csv"
	FileColaborador = "matriz_colaborador.csv"
)

// LoadDir 从目录读取三张表
func LoadDir(dir string) (*model.RawTables, error) {
	calendario, err := loadFile(filepath.Join(dir, FileCalendario))
	if err != nil {
		return nil, err
	}
	estimativas, err := loadFile(filepath.Join(dir, FileEstimativas))
	if err != nil {
		return nil, err
	}
	colaborador, err := loadFile(filepath.Join(dir, FileColaborador))
	if err != nil {
		return nil, err
	}

	return &model.RawTables{
		Calendario:  calendario,
		Estimativas: estimativas,
		Colaborador: colaborador,
	}, nil
}

func loadFile(path string) (*model.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 CSV 失败: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析 CSV %s 失败: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV %s 为空", path)
	}

	table := &model.RawTable{Columns: records[0], Rows: records[1:]}
	logger.Info().Str("file", path).Int("rows", len(table.Rows)).Msg("CSV 装载完成")
	return table, nil
}
