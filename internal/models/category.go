package models

import "time"

// Category is a grievance category (water, roads, ...) with an ordered list
// of sub-category labels. Value is the stable slug tasks reference.
type Category struct {
	ID            int64     `json:"id"`
	Value         string    `json:"value"`
	Label         string    `json:"label"`
	SubCategories []string  `json:"sub_categories"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
