package scenario

import (
	"testing"

	"github.com/salsa/salsa/pkg/engine/calendar"
	"github.com/salsa/salsa/pkg/engine/contract"
	"github.com/salsa/salsa/pkg/engine/input"
	"github.com/salsa/salsa/pkg/model"
)

// reclassify 重跑规整与分类管线，供事后验证使用
func reclassify(t *testing.T, raw *model.RawTables) *model.Problem {
	t.Helper()

	tables, err := input.Normalize(raw)
	if err != nil {
		t.Fatalf("规整失败: %v", err)
	}
	p, err := calendar.Classify(tables, model.ProblemSettings{
		AdmissaoProporcional:     "floor",
		MaxContinuousWorkingDays: 6,
	})
	if err != nil {
		t.Fatalf("分类失败: %v", err)
	}
	contract.Derive(p, tables)
	return p
}
