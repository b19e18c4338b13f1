package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/newtron-network/acipush/pkg/row"
	"github.com/newtron-network/acipush/pkg/util"
)

// CSVDir reads each table from <Dir>/<table>.csv. The first record is the
// header; InfoRows records after it are descriptive and dropped.
type CSVDir struct {
	Dir      string
	InfoRows int
}

// Rows reads the named table.
func (d *CSVDir) Rows(ctx context.Context, table string) ([]row.Raw, error) {
	path := filepath.Join(d.Dir, table+".csv")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Table: table, Source: d.Dir}
		}
		return nil, fmt.Errorf("opening table %s: %w", table, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []row.Raw
	skip := d.InfoRows
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		line, _ := r.FieldPos(0)
		if skip > 0 {
			skip--
			continue
		}
		if blankRecord(rec) {
			continue
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" || strings.EqualFold(name, StatusColumn) || i >= len(rec) {
				continue
			}
			fields[name] = rec[i]
		}
		rows = append(rows, row.Raw{
			Index:  len(rows),
			Line:   line,
			Fields: fields,
			Ref:    ref(table, line),
		})
	}

	util.WithField("table", table).Debugf("read %d rows from %s", len(rows), path)
	return rows, nil
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if !util.IsBlank(v) {
			return false
		}
	}
	return true
}
