package cmd

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v2"
)

const maxColWidth = 60

var out io.Writer = os.Stdout

// Formatter renders the result of a command
type Formatter interface {
	Format(io.Writer, interface{}) error
}

// FormatterFunc is a function usable as a Formatter
type FormatterFunc func(io.Writer, interface{}) error

// Format the data
func (f FormatterFunc) Format(w io.Writer, data interface{}) error {
	return f(w, data)
}

var yamlFormatter = FormatterFunc(func(w io.Writer, data interface{}) error {
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
})

// render the data with the formatter, or as yaml when --yaml is set
func render(data interface{}, f Formatter) {
	if datahubFlags.root.yaml || f == nil {
		f = yamlFormatter
	}
	if err := f.Format(out, data); err != nil {
		wrapFatalln("rendering output", err)
	}
}

func newTable(headers ...string) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.Wrap = true
	if len(headers) > 0 {
		bold := color.New(color.Bold).SprintFunc()
		row := make([]interface{}, 0, len(headers))
		for _, h := range headers {
			row = append(row, bold(h))
		}
		table.AddRow(row...)
	}
	return table
}

func writeTable(w io.Writer, table *uitable.Table) error {
	_, err := io.WriteString(w, table.String()+"\n")
	return err
}
