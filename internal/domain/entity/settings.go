package entity

// SettingsList nombre de una de las listas configurables.
type SettingsList string

// Listas configurables.
const (
	ListCategories            SettingsList = "categories"
	ListSuppliers             SettingsList = "suppliers"
	ListDestinations          SettingsList = "destinations"
	ListOutgoingSubcategories SettingsList = "outgoingSubcategories"
)

// Valid indica si el nombre de lista es conocido.
func (l SettingsList) Valid() bool {
	switch l {
	case ListCategories, ListSuppliers, ListDestinations, ListOutgoingSubcategories:
		return true
	}
	return false
}

// Settings registro único con las listas de referencia.
type Settings struct {
	Categories            []string `json:"categories"`
	Suppliers             []string `json:"suppliers"`
	Destinations          []string `json:"destinations"`
	OutgoingSubcategories []string `json:"outgoingSubcategories"`
}

// List devuelve la lista indicada (nil si el nombre no existe).
func (s Settings) List(name SettingsList) []string {
	switch name {
	case ListCategories:
		return s.Categories
	case ListSuppliers:
		return s.Suppliers
	case ListDestinations:
		return s.Destinations
	case ListOutgoingSubcategories:
		return s.OutgoingSubcategories
	}
	return nil
}

// WithList devuelve una copia con la lista reemplazada.
func (s Settings) WithList(name SettingsList, values []string) Settings {
	out := s.Clone()
	v := append([]string(nil), values...)
	switch name {
	case ListCategories:
		out.Categories = v
	case ListSuppliers:
		out.Suppliers = v
	case ListDestinations:
		out.Destinations = v
	case ListOutgoingSubcategories:
		out.OutgoingSubcategories = v
	}
	return out
}

// Clone copia profunda.
func (s Settings) Clone() Settings {
	return Settings{
		Categories:            append([]string(nil), s.Categories...),
		Suppliers:             append([]string(nil), s.Suppliers...),
		Destinations:          append([]string(nil), s.Destinations...),
		OutgoingSubcategories: append([]string(nil), s.OutgoingSubcategories...),
	}
}

// DefaultSettings listas iniciales de una instalación nueva.
func DefaultSettings() Settings {
	return Settings{
		Categories:            []string{"Médicaments", "Fournitures", "Consommables", "Autres"},
		Suppliers:             []string{"Fournisseur A", "Dépôt Central"},
		Destinations:          []string{"Service 1", "Périmé"},
		OutgoingSubcategories: []string{"Dispensation Patient", "Dotation Service", "Transfert Inter-dépôt", "Autre"},
	}
}
