package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/akselna/utveksle.no-sub001/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// exportSheet 导出工作表名
const exportSheet = "Emnebank"

// exportHeaders 导出表头（挪威语，与前端一致）
var exportHeaders = []string{
	"ID", "Emnekode", "Emnenavn", "Partneremnekode", "Partneremnenavn",
	"Universitet", "Land", "ECTS", "Semester", "Verifisert", "Godkjent", "Dato", "Kilde",
}

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出课程库全部或仅已审核的课程对照为 Excel (.xlsx)
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 单个 Sheet，按院校、本校课程代码排序
type ExportService interface {
	// ExportCourses 导出课程对照为 Excel
	ExportCourses(ctx context.Context, approvedOnly bool) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// 返回值：buf（Excel 内容）, filename（建议文件名）, error
func (s *exportService) ExportCourses(ctx context.Context, approvedOnly bool) (*bytes.Buffer, string, error) {
	// 1. 查询课程对照
	courses, err := s.repo.Course.ListForExport(ctx, approvedOnly)
	if err != nil {
		s.logger.Error("查询导出数据失败", zap.Bool("approved_only", approvedOnly), zap.Error(err))
		return nil, "", ErrCourseQueryFailed
	}

	// 2. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	f.SetColWidth(exportSheet, "A", "A", 8)
	f.SetColWidth(exportSheet, "B", "E", 24)
	f.SetColWidth(exportSheet, "F", "G", 20)
	f.SetColWidth(exportSheet, "M", "M", 40)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	for i, h := range exportHeaders {
		f.SetCellValue(exportSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(exportSheet, "A1", cell(colName(len(exportHeaders)-1), 1), headerStyle)
	f.SetPanes(exportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	// 数据行
	for i := range courses {
		m := &courses[i]
		row := i + 2

		source := ""
		if m.SourceURL != nil {
			source = *m.SourceURL
		}
		values := []interface{}{
			m.ID, m.HomeCourseCode, m.HomeCourseName, m.PartnerCourseCode, m.PartnerCourseName,
			m.University, m.Country, m.ECTS, m.Semester, yesNo(m.Verified), yesNo(m.Approved),
			m.DisplayDate().Format("2006-01-02"), source,
		}
		if err := f.SetSheetRow(exportSheet, cell("A", row), &values); err != nil {
			s.logger.Error("写入导出行失败", zap.Int("row", row), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}

	// 3. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("课程库已导出", zap.Int("rows", len(courses)), zap.Bool("approved_only", approvedOnly))

	filename := fmt.Sprintf("emnebank_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func yesNo(b bool) string {
	if b {
		return "Ja"
	}
	return "Nei"
}
