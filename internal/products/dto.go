package products

type CreateProductRequest struct {
	Code   string       `json:"code" validate:"required,max=50"`
	Name   string       `json:"name" validate:"required,max=300"`
	MRP    float64      `json:"mrp" validate:"gte=0"`
	Price  float64      `json:"price" validate:"gte=0"`
	Unit   string       `json:"unit" validate:"omitempty,max=20"`
	Images []string     `json:"images" validate:"omitempty,dive,url"`
	Meta   []MetaDetail `json:"meta" validate:"omitempty,dive"`
}

type UpdateProductRequest struct {
	Name   *string       `json:"name,omitempty" validate:"omitempty,max=300"`
	MRP    *float64      `json:"mrp,omitempty" validate:"omitempty,gte=0"`
	Price  *float64      `json:"price,omitempty" validate:"omitempty,gte=0"`
	Unit   *string       `json:"unit,omitempty" validate:"omitempty,max=20"`
	Images *[]string     `json:"images,omitempty" validate:"omitempty,dive,url"`
	Meta   *[]MetaDetail `json:"meta,omitempty" validate:"omitempty,dive"`
}

type ListProductsRequest struct {
	Search   string `json:"search"`
	IsActive *bool  `json:"is_active,omitempty"`
	Limit    int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int    `json:"offset" validate:"gte=0"`
}
