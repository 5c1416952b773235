package dto

// PageQuery paginación solicitada en listados.
type PageQuery struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

// DefaultPage aplica valores por defecto si Page/PerPage son cero.
func (p *PageQuery) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = 10
	}
}

// PageMeta metadatos de página tomados del sobre de respuesta.
type PageMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ShowingFrom primer índice (base 1) visible: (page−1)·per_page + 1.
func (m PageMeta) ShowingFrom() int {
	if m.Total == 0 {
		return 0
	}
	return (m.Page-1)*m.PerPage + 1
}

// ShowingTo último índice visible: min(page·per_page, total).
func (m PageMeta) ShowingTo() int {
	to := m.Page * m.PerPage
	if to > m.Total {
		to = m.Total
	}
	return to
}

// HasPrev indica si hay página anterior (prev se deshabilita en page=1).
func (m PageMeta) HasPrev() bool { return m.Page > 1 }

// HasNext indica si hay página siguiente (next se deshabilita en la última).
func (m PageMeta) HasNext() bool { return m.Page < m.TotalPages }
