package food

import "time"

type FeedbackRequest struct {
	ScanID          string `json:"scan_id" validate:"required"`
	IsAccurate      *bool  `json:"is_accurate" validate:"required"`
	CorrectFoodName string `json:"correct_food_name" validate:"omitempty,max=100"`
	Comments        string `json:"comments" validate:"omitempty,max=1000"`
}

type FeedbackResponse struct {
	Message string `json:"message"`
	ScanID  string `json:"scan_id"`
}

type HistoryQuery struct {
	Limit int `query:"limit"`
}

type HistoryItemResponse struct {
	ID                 string    `json:"id"`
	ImageURL           string    `json:"image_url"`
	TotalCalories      float64   `json:"total_calories"`
	DetectedFoodsCount int       `json:"detected_foods_count"`
	CreatedAt          time.Time `json:"created_at"`
}

type HistoryResponse struct {
	Scans []HistoryItemResponse `json:"scans"`
	Count int                   `json:"count"`
}
