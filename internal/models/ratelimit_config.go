package models

import "time"

// RatelimitConfig is a stored API rate such as "10-S" or "300-M".
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatelimitKeyAPI is the config key of the public API rate.
const RatelimitKeyAPI = "api"
