package auth

// LoginInput represents the request body for user login.
type LoginInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=72"`
}

// MeResponse is the current user as the client sees it.
type MeResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"isAdmin"`
	Avatar   string `json:"avatar,omitempty"`
	Color    string `json:"color,omitempty"`
	FamilyID string `json:"familyId"`
}
