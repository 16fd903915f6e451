package backup

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// DumpSQL writes a logical SQL dump (DDL + INSERT statements) for the given
// tables. Used when the postgres client tools are unavailable; the output
// restores through any SQL shell.
func DumpSQL(db *gorm.DB, tables []string, w io.Writer) error {
	fmt.Fprintf(w, "-- metastack logical dump %s\n\n", time.Now().Format(time.RFC3339))
	for _, table := range tables {
		if err := dumpTableDDL(db, table, w); err != nil {
			return err
		}
		if err := dumpTableRows(db, table, w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}

func dumpTableDDL(db *gorm.DB, table string, w io.Writer) error {
	type col struct {
		ColumnName string
		DataType   string
		IsNullable string
	}
	var cols []col
	err := db.Raw(`SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_name = ? ORDER BY ordinal_position`, table).Scan(&cols).Error
	if err != nil {
		return errors.Wrapf(err, "describe %s", table)
	}
	if len(cols) == 0 {
		return fmt.Errorf("table %s not found", table)
	}

	fmt.Fprintf(w, "DROP TABLE IF EXISTS %q;\n", table)
	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		def := fmt.Sprintf("    %q %s", c.ColumnName, c.DataType)
		if c.IsNullable == "NO" {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	fmt.Fprintf(w, "CREATE TABLE %q (\n%s\n);\n", table, strings.Join(defs, ",\n"))
	return nil
}

func dumpTableRows(db *gorm.DB, table string, w io.Writer) error {
	rows, err := db.Raw("SELECT * FROM " + quoteIdent(table)).Rows()
	if err != nil {
		return errors.Wrapf(err, "read %s", table)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = FormatSQLValue(v)
		}
		fmt.Fprintf(w, "INSERT INTO %q VALUES (%s);\n", table, strings.Join(parts, ", "))
	}
	return rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// FormatSQLValue renders a scanned value as a SQL literal.
func FormatSQLValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	case time.Time:
		return "'" + v.Format("2006-01-02 15:04:05.999999") + "'"
	case []byte:
		return "'" + strings.ReplaceAll(string(v), "'", "''") + "'"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprintf("%v", v), "'", "''") + "'"
	}
}
