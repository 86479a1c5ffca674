package fetcher

import (
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// ReadHTMLTable parses the first <table> in an HTML document. Some report
// exporters emit HTML with an .xls extension; this is the fallback for them.
func ReadHTMLTable(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "html: open file")
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, eris.Wrap(err, "html: parse document")
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, eris.New("html: no table found")
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	if len(rows) == 0 {
		return nil, eris.New("html: table has no rows")
	}
	return rows, nil
}
