package entity

// Address dirección guardada del usuario. El backend garantiza que a lo
// sumo una dirección por usuario tiene IsDefault = true.
type Address struct {
	ID        string `json:"id"`
	TagName   string `json:"tag_name"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Line1     string `json:"address_line1"`
	Line2     string `json:"address_line2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip_code"`
	Country   string `json:"country"`
	IsDefault bool   `json:"is_default"`
}
