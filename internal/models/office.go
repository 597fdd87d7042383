package models

import "time"

// Office is a political office: the unit of data isolation (tenant).
type Office struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Region    string    `json:"region"`
	CreatedAt time.Time `json:"created_at"`
}
