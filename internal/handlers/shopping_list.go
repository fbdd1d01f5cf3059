package handlers

import (
	"fmt"
	"strings"

	"github.com/PepegaBoss/foodgram-project-react/internal/models"
)

const shoppingListHeader = "Список покупок"

// renderShoppingList formats aggregated items, one "name (unit): total" line
// each, in the order given.
func renderShoppingList(items []models.ShoppingListItem) string {
	var b strings.Builder
	b.WriteString(shoppingListHeader)
	b.WriteString("\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%s (%s): %d\n", item.Name, item.MeasurementUnit, item.Total)
	}
	return b.String()
}
