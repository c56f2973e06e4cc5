package models

// Requests for the watchlist HTTP endpoints.

type AddSymbolRequest struct {
	Query string `json:"query" validate:"required,max=64,symbol"`
}

type ReorderRequest struct {
	Names []string `json:"names" validate:"required,dive,required,symbol"`
}

type SearchRequest struct {
	Query string `query:"q" json:"q" validate:"required"`
	Limit int    `query:"limit" json:"limit" default:"15" validate:"gte=1,lte=100"`
}

type ValidateRequest struct {
	Query string `query:"q" json:"q" validate:"required"`
}

type CyclesRequest struct {
	Limit int `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=500"`
}
