package models

// Product is the marketer's description of what is being promoted
type Product struct {
	Name           string   `json:"productName,omitempty"`
	Description    string   `json:"productDescription" validate:"required"`
	Price          string   `json:"productPrice,omitempty"`
	Link           string   `json:"productLink,omitempty"`
	Benefits       []string `json:"productBenefits,omitempty"`
	TargetAudience string   `json:"targetAudience,omitempty"`
}
