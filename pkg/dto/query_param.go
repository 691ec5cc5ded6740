package dto

type Filter struct {
	Limit       int    `query:"limit" validate:"gte=0,lte=100"`
	Page        int    `query:"page" validate:"gte=0,lte=100000"`
	ProductType string `query:"type"`
}
