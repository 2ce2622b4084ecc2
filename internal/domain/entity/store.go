package entity

// StoreSummary es la tienda (tenant) asociada al Principal. Se obtiene con una consulta
// dependiente después de resolver al usuario; no viaja dentro del token.
type StoreSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency,omitempty"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Complete informa si la tienda trae id y nombre.
func (s *StoreSummary) Complete() bool {
	return s != nil && s.ID != "" && s.Name != ""
}

// Clone devuelve una copia independiente (nil si s es nil).
func (s *StoreSummary) Clone() *StoreSummary {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
