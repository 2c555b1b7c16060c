package models

import "time"

// Vector is one generated ENCRYPT or DECRYPT record.
type Vector struct {
	ID        string `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    string `gorm:"type:uuid;not null;index" json:"user_id"`
	Algorithm string `gorm:"not null" json:"algorithm"`
	Mode      string `gorm:"not null" json:"mode"`
	TestMode  string `gorm:"not null" json:"test_mode"`
	Direction string `gorm:"not null" json:"direction"`
	KeyBits   int    `json:"key_bits"`
	Count     int    `json:"count"`

	KeyHex    string  `json:"key_hex"`
	IVHex     string  `json:"iv_hex"`
	InputHex  *string `json:"input_hex"`
	OutputHex *string `json:"output_hex"`

	Status    string    `json:"status"` // ready, done, failed
	CreatedAt time.Time `json:"created_at"`
}

func (Vector) TableName() string { return "vectors" }
