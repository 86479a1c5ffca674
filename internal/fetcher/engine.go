package fetcher

import (
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
)

// maxXLSRows bounds how many rows the legacy reader will materialize.
const maxXLSRows = 100000

// ReadWithEngine parses with a format-specific engine chosen by extension:
// the legacy BIFF reader for .xls, excelize for everything else. Last resort
// after the native and HTML strategies.
func ReadWithEngine(path string) ([][]string, error) {
	if strings.ToLower(filepath.Ext(path)) == ".xls" {
		return readLegacyXLS(path)
	}
	return readExcelize(path)
}

func readLegacyXLS(path string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, eris.Wrap(err, "engine: open xls")
	}
	if wb.NumSheets() == 0 {
		return nil, eris.New("engine: xls has no sheets")
	}
	rows := wb.ReadAllCells(maxXLSRows)
	if len(rows) == 0 {
		return nil, eris.New("engine: xls sheet is empty")
	}
	return rows, nil
}

func readExcelize(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "engine: open workbook")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, eris.New("engine: workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, eris.Wrap(err, "engine: read rows")
	}
	return rows, nil
}
