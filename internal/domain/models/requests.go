package models

// Requests for the HTTP and WebSocket endpoints.

type EvaluateRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,max=20"`
	Preset string `query:"preset" json:"preset" validate:"max=50"`
	Year   int    `query:"year" json:"year" validate:"omitempty,gte=2000,lte=2100"`
}

type SearchRequest struct {
	Keyword string `query:"q" json:"q" validate:"required,max=50"`
	Page    int    `query:"page" json:"page" default:"1" validate:"gte=1"`
}

type HistoryRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,max=20"`
	Limit  int    `query:"limit" json:"limit" default:"30" validate:"gte=1,lte=500"`
}

type PresetNameRequest struct {
	Name string `param:"name" json:"presetName" validate:"required,max=50"`
}

type DefaultPresetRequest struct {
	PresetName string `json:"presetName" validate:"required,max=50"`
}

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=500"`
	Ticker  string `json:"ticker" validate:"required,max=20"`
	Preset  string `json:"preset" validate:"max=50"`
}

// SearchPage is one page of search results.
type SearchPage struct {
	Rows       []SecurityIdentity `json:"rows"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	TotalPages int                `json:"totalPages"`
}
