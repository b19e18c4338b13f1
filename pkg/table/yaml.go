package table

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/acipush/pkg/row"
	"github.com/newtron-network/acipush/pkg/util"
)

// YAMLBook reads every table from one YAML file of the form
//
//	tables:
//	  TABLE_TENANT:
//	    - tn_name: Prod
//	      description: production
type YAMLBook struct {
	Path string
}

type book struct {
	Tables map[string][]map[string]yaml.Node `yaml:"tables"`
}

// Rows reads the named table. Scalars are taken as written, so 010 stays
// "010" and true stays "true".
func (b *YAMLBook) Rows(ctx context.Context, table string) ([]row.Raw, error) {
	data, err := os.ReadFile(b.Path)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	var bk book
	if err := yaml.Unmarshal(data, &bk); err != nil {
		return nil, fmt.Errorf("parsing workbook %s: %w", b.Path, err)
	}

	records, ok := bk.Tables[table]
	if !ok {
		return nil, &NotFoundError{Table: table, Source: b.Path}
	}

	rows := make([]row.Raw, 0, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields := make(map[string]string, len(rec))
		line := 0
		for name, node := range rec {
			if name == StatusColumn {
				continue
			}
			if node.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("table %s row %d: field %s is not a scalar", table, i, name)
			}
			if node.Tag != "!!null" {
				fields[name] = node.Value
			}
			if line == 0 || node.Line < line {
				line = node.Line
			}
		}
		rows = append(rows, row.Raw{
			Index:  i,
			Line:   line,
			Fields: fields,
			Ref:    table + "[" + strconv.Itoa(i) + "]",
		})
	}

	util.WithField("table", table).Debugf("read %d rows from %s", len(rows), b.Path)
	return rows, nil
}

// Tables lists the tables the workbook defines, sorted.
func (b *YAMLBook) Tables() ([]string, error) {
	data, err := os.ReadFile(b.Path)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	var bk book
	if err := yaml.Unmarshal(data, &bk); err != nil {
		return nil, fmt.Errorf("parsing workbook %s: %w", b.Path, err)
	}
	return util.SortedKeys(bk.Tables), nil
}
