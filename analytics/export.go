package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/utils"
)

const exportSheet = "Responses"

// Workbook xuất phản hồi đã lọc ra xlsx: mỗi phản hồi một dòng, mỗi câu hỏi một cột.
// Câu trả lời nhiều lựa chọn được nối bằng ", ".
func Workbook(form *models.Form, questions []models.Question, responses []models.Response, f Filter) (*excelize.File, string, error) {
	x := excelize.NewFile()
	if err := x.SetSheetName("Sheet1", exportSheet); err != nil {
		x.Close()
		return nil, "", err
	}

	headStyle, err := x.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		x.Close()
		return nil, "", err
	}

	headers := []string{"Thời gian (UTC)", "Nguồn"}
	for _, q := range questions {
		headers = append(headers, q.Text)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		x.SetCellValue(exportSheet, cell, h)
		x.SetCellStyle(exportSheet, cell, cell, headStyle)
	}

	column := make(map[string]int, len(questions))
	for i, q := range questions {
		column[q.ID] = i + 3
	}

	row := 2
	for _, r := range f.Apply(responses) {
		x.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), r.CreatedAt.UTC().Format(time.DateTime))
		x.SetCellValue(exportSheet, fmt.Sprintf("B%d", row), r.Source)
		for _, a := range r.Answers {
			col, ok := column[a.QuestionID]
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col, row)
			x.SetCellValue(exportSheet, cell, strings.Join(utils.DecodeChoices(a.Value), ", "))
		}
		row++
	}

	x.SetColWidth(exportSheet, "A", "A", 20)
	x.SetColWidth(exportSheet, "B", "B", 8)
	if len(questions) > 0 {
		last, _ := excelize.ColumnNumberToName(len(questions) + 2)
		x.SetColWidth(exportSheet, "C", last, 28)
	}

	base := utils.Slugify(form.Title)
	if base == "" {
		base = "form"
	}
	filename := base + "_responses.xlsx"
	return x, filename, nil
}
