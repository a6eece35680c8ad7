package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/barcodegen/internal/models"
)

var _ list.Item = productItem{}

// productItem wraps [models.Product] to implement [list.Item].
type productItem struct {
	product models.Product
}

func (i productItem) FilterValue() string { return i.product.Name + " " + i.product.Code }
func (i productItem) Title() string       { return i.product.Name }
func (i productItem) Description() string {
	if i.product.LastNumber == 0 {
		return fmt.Sprintf("%s • no codes issued", i.product.Code)
	}
	return fmt.Sprintf("%s • last number %d", i.product.Code, i.product.LastNumber)
}

func productItems(products []models.Product) []list.Item {
	items := make([]list.Item, len(products))
	for i, p := range products {
		items[i] = productItem{product: p}
	}
	return items
}
