package account

import "github.com/shopspring/decimal"

// CreateAccountRequest represents the request body for creating an account.
// UserID lets a parent open an account for another family member.
type CreateAccountRequest struct {
	UserID    string          `json:"userId" validate:"omitempty,uuid"`
	Name      string          `json:"name" validate:"required,max=100"`
	Type      string          `json:"type" validate:"omitempty,oneof=bank cash credit wallet loan invest"`
	Balance   decimal.Decimal `json:"balance"`
	Color     string          `json:"color" validate:"omitempty,max=20"`
	Icon      string          `json:"icon" validate:"omitempty,max=50"`
	AccountNo string          `json:"accountNo" validate:"omitempty,max=50"`
}

// UpdateAccountRequest holds the editable account fields. The balance is
// not one of them.
type UpdateAccountRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	Type      *string `json:"type" validate:"omitempty,oneof=bank cash credit wallet loan invest"`
	Color     *string `json:"color" validate:"omitempty,max=20"`
	Icon      *string `json:"icon" validate:"omitempty,max=50"`
	AccountNo *string `json:"accountNo" validate:"omitempty,max=50"`
	Status    *string `json:"status" validate:"omitempty,oneof=active archived"`
}
