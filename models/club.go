package models

import "time"

type Club struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	PictureURL *string   `json:"picture_url,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Website    *string   `json:"website,omitempty"`
	AppURL     *string   `json:"app_url,omitempty"`
	PixKey     *string   `json:"pix_key,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
