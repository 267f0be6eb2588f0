package models

// Player is one rostered participant. Rating follows the common 2.0-5.5
// club scale and only informs initial seeding.
type Player struct {
	ID          int     `json:"id" db:"id"`
	DisplayName string  `json:"display_name" db:"display_name"`
	Rating      float64 `json:"rating" db:"rating"`
}
