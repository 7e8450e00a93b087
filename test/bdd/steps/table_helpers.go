package steps

import (
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
)

// getCellValueFromTable gets a cell value from a table row by column name.
// The first row of the table is the header.
func getCellValueFromTable(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	if len(table.Rows) == 0 {
		return ""
	}
	for i, headerCell := range table.Rows[0].Cells {
		if headerCell.Value == columnName {
			if i < len(row.Cells) {
				return row.Cells[i].Value
			}
			return ""
		}
	}
	return ""
}

// itemQuantities reads an item/quantity table into a map. The quantity column
// may be named "quantity" or "physical".
func itemQuantities(table *godog.Table, quantityColumn string) (map[string]int, error) {
	out := make(map[string]int)
	for _, row := range table.Rows[1:] {
		item := getCellValueFromTable(table, row, "item")
		qty, err := strconv.Atoi(getCellValueFromTable(table, row, quantityColumn))
		if err != nil {
			return nil, fmt.Errorf("invalid %s for %s: %w", quantityColumn, item, err)
		}
		out[item] = qty
	}
	return out, nil
}
