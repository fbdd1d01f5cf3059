package handlers

import (
	"testing"

	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRenderShoppingList(t *testing.T) {
	assert.Equal(t, "Список покупок\n\n", renderShoppingList(nil))

	got := renderShoppingList([]models.ShoppingListItem{
		{Name: "мука", MeasurementUnit: "г", Total: 700},
		{Name: "яйца", MeasurementUnit: "шт", Total: 3},
	})
	assert.Equal(t, "Список покупок\n\nмука (г): 700\nяйца (шт): 3\n", got)
}
