package shoe

import (
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx"
)

var exportHeaders = []string{
	"ID", "Name", "Brand", "Category", "Sizes", "Colors",
	"Price", "Stock", "Value", "Description", "CreatedAt",
}

// WriteWorkbook renders shoes as a single-sheet xlsx workbook. Images are
// left out; base64 payloads would blow past the cell size limit.
func WriteWorkbook(w io.Writer, shoes []Shoe) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Inventory")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}

	for _, s := range shoes {
		row := sheet.AddRow()
		row.AddCell().SetValue(s.ID.String())
		row.AddCell().SetValue(s.Name)
		row.AddCell().SetValue(s.Brand)
		row.AddCell().SetValue(s.Category.String())
		row.AddCell().SetValue(strings.Join(s.Sizes, ","))
		row.AddCell().SetValue(strings.Join(s.Colors, ","))
		row.AddCell().SetFloat(s.Price)
		row.AddCell().SetInt(s.Stock)
		row.AddCell().SetFloat(s.Price * float64(s.Stock))
		row.AddCell().SetValue(s.Description)
		row.AddCell().SetValue(s.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return file.Write(w)
}
