package etl

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Importer loads a workbook sheet into a warehouse table. The table is
// dropped and recreated on every run with TEXT data columns plus an
// import_timestamp column, the contract the dashboards were built against.
type Importer struct {
	db *gorm.DB
}

func NewImporter(db *gorm.DB) *Importer {
	return &Importer{db: db}
}

// NormalizeColumn converts a workbook header into a legal column name.
func NormalizeColumn(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "(", "")
	s = strings.ReplaceAll(s, ")", "")
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		s = "c_" + s
	}
	return s
}

// CoerceCell normalizes a raw cell value. Recognized dates come out in
// RFC 3339 so the dashboards can cast them; everything else passes through.
func CoerceCell(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return v
	}
	// cheap pre-filter: dateparse is only consulted for date-shaped cells
	if strings.ContainsAny(v, "-/") && len(v) >= 8 && len(v) <= 30 {
		if t, err := dateparse.ParseAny(v); err == nil {
			return t.Format(time.RFC3339)
		}
	}
	return v
}

// columnNames derives unique normalized column names from a header row.
func columnNames(header []string) []string {
	counts := make(map[string]int)
	out := make([]string, 0, len(header))
	for _, h := range header {
		name := NormalizeColumn(h)
		counts[name]++
		if c := counts[name]; c > 1 {
			name = fmt.Sprintf("%s_%d", name, c)
		}
		out = append(out, name)
	}
	return out
}

func isValidTableName(name string) bool {
	return len(name) <= 63 && identPattern.MatchString(name)
}

// ImportFile reads the first sheet of the workbook and loads it into table.
// Returns the number of data rows inserted.
func (i *Importer) ImportFile(xlsxPath, table string) (int, error) {
	if !isValidTableName(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return 0, errors.Wrapf(err, "open workbook %s", xlsxPath)
	}

	sheet := f.GetSheetName(1)
	rows := f.GetRows(sheet)
	if len(rows) < 1 {
		return 0, fmt.Errorf("workbook sheet %q is empty", sheet)
	}

	cols := columnNames(rows[0])
	zap.L().Info("importing workbook",
		zap.String("table", table),
		zap.Int("rows", len(rows)-1),
		zap.Int("columns", len(cols)))

	err = i.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)).Error; err != nil {
			return errors.Wrap(err, "drop table")
		}

		defs := make([]string, 0, len(cols)+1)
		for _, c := range cols {
			defs = append(defs, fmt.Sprintf("    %s TEXT", c))
		}
		defs = append(defs, "    import_timestamp TIMESTAMP")
		createSQL := fmt.Sprintf("CREATE TABLE %s (\n%s\n)", table, strings.Join(defs, ",\n"))
		if err := tx.Exec(createSQL).Error; err != nil {
			return errors.Wrap(err, "create table")
		}

		now := time.Now()
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)+1), ", ")
		insertSQL := fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, placeholders)
		for _, row := range rows[1:] {
			vals := make([]interface{}, len(cols)+1)
			for j := range cols {
				if j < len(row) {
					vals[j] = CoerceCell(row[j])
				} else {
					vals[j] = ""
				}
			}
			vals[len(cols)] = now
			if err := tx.Exec(insertSQL, vals...).Error; err != nil {
				return errors.Wrap(err, "insert row")
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows) - 1, nil
}
