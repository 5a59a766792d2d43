package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Output форматирует вывод CLI: таблица в stdout по умолчанию,
// JSON с флагом --json. Сообщения идут в stderr, чтобы данные
// можно было направлять в pipe.
type Output struct {
	jsonMode bool
	out      io.Writer
	msg      io.Writer
}

// NewOutput создаёт Output. jsonMode=true включает JSON-вывод.
func NewOutput(jsonMode bool) *Output {
	return &Output{
		jsonMode: jsonMode,
		out:      os.Stdout,
		msg:      os.Stderr,
	}
}

// Print выводит данные: tabwriter-таблицу или JSON-представление v.
func (o *Output) Print(headers []string, rows [][]string, v any) {
	if o.jsonMode {
		enc := json.NewEncoder(o.out)
		enc.SetIndent("", "  ")
		enc.Encode(v)
		return
	}

	tw := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// Success выводит сообщение в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.msg, msg)
}
