package user

// NewUser represents the request body for adding a family member.
type NewUser struct {
	Name     string `json:"name" validate:"required,max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=parent child"`
	Password string `json:"password" validate:"omitempty,min=4,max=72"`
	Color    string `json:"color" validate:"omitempty,max=20"`
	Avatar   string `json:"avatar" validate:"omitempty,max=500"`
}

// UpdateUserInput represents the editable member fields.
type UpdateUserInput struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Role     *string `json:"role" validate:"omitempty,oneof=parent child"`
	Password *string `json:"password" validate:"omitempty,min=4,max=72"`
	Color    *string `json:"color" validate:"omitempty,max=20"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=500"`
}
