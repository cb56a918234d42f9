package cart

type AddItemRequest struct {
	ProductVariantID string `json:"product_variant_id" validate:"required"`
	Quantity         int    `json:"quantity" validate:"required,min=1"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type DrawerRequest struct {
	Action string `json:"action" validate:"required"`
}
