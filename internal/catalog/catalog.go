// Package catalog holds the Lamitex product line and the sales agent persona
// built on top of it.
package catalog

import (
	"fmt"
	"strings"
)

// Category groups products the way the sales team presents them.
type Category string

const (
	CategoryAutomotive  Category = "Automotiva"
	CategoryAccessories Category = "Acessórios & Brindes"
	CategoryFashion     Category = "Moda & Decoração"

	// CategoryAll is the dashboard filter value that disables filtering.
	CategoryAll Category = "Tudo"
)

// Categories lists the product categories in display order.
func Categories() []Category {
	return []Category{CategoryAutomotive, CategoryAccessories, CategoryFashion}
}

// Product is one catalog entry.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Specs       string   `json:"specs"`
	Thickness   string   `json:"thickness"`
}

var products = []Product{
	{ID: "curvim", Name: "Curvim Original", Category: CategoryAutomotive,
		Description: "Para bancos originais. Sintético PVC dublado na espuma D26 com malha.",
		Specs:       "Espuma D26 (5mm)", Thickness: "0.8 a 1.0mm"},
	{ID: "diamante", Name: "Diamante Premium", Category: CategoryAutomotive,
		Description: "Para detalhes/encostos. Desenho costurado em formato diamante (Ferrari, Corolla).",
		Specs:       "Espuma D26 (5mm)", Thickness: "1.0mm"},
	{ID: "oxcar", Name: "Oxcar", Category: CategoryAutomotive,
		Description: "Tecido Oxford plano poliéster para capas e bancos.",
		Specs:       "Espuma D23 (2 ou 3mm)", Thickness: "N/A"},
	{ID: "pisoflex", Name: "Pisoflex", Category: CategoryAutomotive,
		Description: "PVC com manta para piso de ônibus/van.",
		Specs:       "Manta de reforço", Thickness: "2.0mm"},
	{ID: "neotex", Name: "Neotex", Category: CategoryAccessories,
		Description: "Tipo Neoprene. Malha helanca + borracha látex.",
		Specs:       "Borracha Látex", Thickness: "2 a 3mm"},
	{ID: "bagum", Name: "Bagum", Category: CategoryAccessories,
		Description: "PVC 0.20 com tela poliéster. Para mochilas e capas.",
		Specs:       "Tela Poliéster", Thickness: "0.20mm"},
	{ID: "montana", Name: "Montana", Category: CategoryFashion,
		Description: "PVC/Poliéster forrado com camurça. Para alças e cintos.",
		Specs:       "Fundo Camurça", Thickness: "2.5mm"},
	{ID: "pu_queima", Name: "PU Queima", Category: CategoryFashion,
		Description: "Poliuretano que aceita gravação a calor. Etiquetas de jeans.",
		Specs:       "Termorreativo", Thickness: "1.2 e 1.4mm"},
}

// Products returns a copy of the full catalog.
func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// ByCategory filters the catalog. An empty category or CategoryAll returns everything.
func ByCategory(category Category) []Product {
	if category == "" || category == CategoryAll {
		return Products()
	}
	var out []Product
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// ParseCategory accepts the display label of a category or "Tudo".
func ParseCategory(raw string) (Category, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CategoryAll, nil
	}
	switch c := Category(raw); c {
	case CategoryAll, CategoryAutomotive, CategoryAccessories, CategoryFashion:
		return c, nil
	}
	return "", fmt.Errorf("catalog: unknown category %q", raw)
}
