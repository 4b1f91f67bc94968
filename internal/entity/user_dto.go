package entity

type UpdatePlanRequest struct {
	Plan PlanName `json:"plan"`
}

type AdminActivateRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type AdminDeactivateRequest struct {
	UserID string `json:"user_id"`
}

type AdminSessionDTO struct {
	UserID    string `json:"user_id"`
	IsAdmin   bool   `json:"is_admin"`
	ExpiresIn int    `json:"expires_in_seconds,omitempty"`
}

type UserStatsDTO struct {
	UserID         string   `json:"user_id"`
	Plan           PlanName `json:"plan"`
	PlanName       string   `json:"plan_name"`
	DailyUsage     int      `json:"daily_usage"`
	DailyLimit     int      `json:"daily_limit"`
	TotalUsage     int      `json:"total_usage"`
	TotalLimit     int      `json:"total_limit"`
	MaxSlides      int      `json:"max_slides"`
	VisualElements bool     `json:"visual_elements"`
	IsAdmin        bool     `json:"is_admin"`
}
