// Package table reads raw configuration rows from operator-maintained tables.
package table

import (
	"context"
	"fmt"

	"github.com/newtron-network/acipush/pkg/row"
	"github.com/newtron-network/acipush/pkg/util"
)

// StatusColumn is a result column operators keep beside their data. It is
// never read as input.
const StatusColumn = "status"

// Source yields the data rows of a named table in table order.
type Source interface {
	Rows(ctx context.Context, table string) ([]row.Raw, error)
}

// NotFoundError reports a table the source does not have.
type NotFoundError struct {
	Table  string
	Source string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("table %s not found in %s", e.Table, e.Source)
}

func (e *NotFoundError) Unwrap() error {
	return util.ErrTableNotFound
}

// ref builds the default sink handle of a row.
func ref(table string, line int) string {
	return fmt.Sprintf("%s:%d", table, line)
}
