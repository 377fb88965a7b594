package port

const (
	RoleUser       = "user"
	RoleRestaurant = "restaurant"
	RoleService    = "service"
)

// TokenPayload is the opaque pre-validated caller identity. The core
// trusts it and never re-derives it.
type TokenPayload struct {
	UserID       string `json:"userId"`
	Role         string `json:"role"`
	RestaurantID string `json:"restaurantId,omitempty"`
}

//go:generate mockgen -source=auth.go -destination=mock/auth.go -package=mock
type TokenService interface {
	CreateToken(payload *TokenPayload) (string, error)
	VerifyToken(token string) (*TokenPayload, error)
}
