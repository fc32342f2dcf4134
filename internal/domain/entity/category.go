package entity

// Category particiona todo el inventario y el archivo de liberaciones por tipo de hemocomponente.
type Category string

// Categorías de hemocomponentes. El valor es la etiqueta estable de la frontera.
const (
	CategoryRedBloodCell Category = "Red Blood Cell"
	CategoryPlatelet     Category = "Platelet"
	CategoryPlasma       Category = "Plasma"
)

// String devuelve la etiqueta de la categoría.
func (c Category) String() string { return string(c) }
