package warehouse

import (
	"fmt"
	"strings"

	"lyricflow/internal/config"
)

type dialect struct {
	types       map[string]string
	placeholder func(i int) string
}

var postgresDialect = dialect{
	types: map[string]string{
		config.TypeString:    "TEXT",
		config.TypeInteger:   "BIGINT",
		config.TypeFloat:     "DOUBLE PRECISION",
		config.TypeBoolean:   "BOOLEAN",
		config.TypeTimestamp: "TIMESTAMPTZ",
	},
	placeholder: func(i int) string { return fmt.Sprintf("$%d", i) },
}

var sqliteDialect = dialect{
	types: map[string]string{
		config.TypeString:    "TEXT",
		config.TypeInteger:   "INTEGER",
		config.TypeFloat:     "REAL",
		config.TypeBoolean:   "INTEGER",
		config.TypeTimestamp: "TEXT",
	},
	placeholder: func(int) string { return "?" },
}

func (d dialect) createTable(qualified string, cols []config.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		def := c.Name + " " + d.types[c.Type]
		if c.Required() {
			def += " NOT NULL"
		}
		defs[i] = def
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", qualified, strings.Join(defs, ",\n  "))
}

func (d dialect) insert(qualified string, cols []config.Column) string {
	names := make([]string, len(cols))
	ph := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		ph[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", qualified, strings.Join(names, ", "), strings.Join(ph, ", "))
}
