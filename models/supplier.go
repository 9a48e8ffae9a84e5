package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier is a company in the raw-material supplier catalog.
type Supplier struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	UserID      *string   `json:"user_id" gorm:"size:36;index"`
	CompanyName string    `json:"company_name" gorm:"not null"`
	NIP         string    `json:"nip" gorm:"column:nip;size:10;index"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Region      string    `json:"region"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Website     string    `json:"website"`
	Description string    `json:"description" gorm:"type:text"`
	IsLocal     bool      `json:"is_local" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate assigns an id and creation time.
func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return nil
}

var nipWeights = [9]int{6, 5, 7, 2, 3, 4, 5, 6, 7}

// ValidNIP reports whether nip is a 10-digit Polish tax id with a correct checksum.
// Separators such as dashes and spaces are ignored.
func ValidNIP(nip string) bool {
	digits := make([]int, 0, 10)
	for _, r := range nip {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case r == '-' || r == ' ':
		default:
			return false
		}
	}
	if len(digits) != 10 {
		return false
	}

	sum := 0
	for i, w := range nipWeights {
		sum += digits[i] * w
	}
	check := sum % 11
	return check != 10 && check == digits[9]
}

// NormalizeNIP strips separators from a NIP.
func NormalizeNIP(nip string) string {
	out := make([]rune, 0, 10)
	for _, r := range nip {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return string(out)
}
