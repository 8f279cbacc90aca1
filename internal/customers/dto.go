package customers

type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Address string `json:"address,omitempty" validate:"omitempty,max=500"`
	City    string `json:"city,omitempty" validate:"omitempty,max=100"`
	GSTIN   string `json:"gstin,omitempty" validate:"omitempty,len=15"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
	City    *string `json:"city,omitempty" validate:"omitempty,max=100"`
	GSTIN   *string `json:"gstin,omitempty" validate:"omitempty,len=15"`
}

type ListCustomersRequest struct {
	Search   string `json:"search"`
	IsActive *bool  `json:"is_active,omitempty"`
	Limit    int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int    `json:"offset" validate:"gte=0"`
}
