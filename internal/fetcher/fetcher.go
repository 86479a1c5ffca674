// Package fetcher parses report files into raw row tables. Source files are
// inconsistently encoded (some are real workbooks, some are HTML table
// exports wearing a spreadsheet extension), so parsing runs an ordered chain
// of strategies with the first success winning.
package fetcher

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// A Strategy parses one file into rows of cells. Each strategy is isolated:
// a failure in one never prevents trying the next.
type Strategy struct {
	Name string
	Read func(path string) ([][]string, error)
}

// Strategies is the default chain: native XLSX, then the HTML-table
// fallback, then the per-extension engines.
func Strategies() []Strategy {
	return []Strategy{
		{Name: "xlsx", Read: ReadXLSX},
		{Name: "html", Read: ReadHTMLTable},
		{Name: "engine", Read: ReadWithEngine},
	}
}

// ReadTable tries each strategy in order and returns the first successful
// non-empty parse along with the winning strategy name.
func ReadTable(path string) ([][]string, string, error) {
	for _, s := range Strategies() {
		rows, err := s.Read(path)
		if err != nil {
			zap.L().Debug("fetcher: strategy failed",
				zap.String("strategy", s.Name),
				zap.String("file", filepath.Base(path)),
				zap.Error(err),
			)
			continue
		}
		if len(rows) == 0 {
			continue
		}
		return rows, s.Name, nil
	}
	return nil, "", eris.Errorf("fetcher: no strategy could parse %s", filepath.Base(path))
}
