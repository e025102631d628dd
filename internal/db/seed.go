package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/internal/models"
)

// Seed inserts the baseline service catalog. Safe to run repeatedly.
func Seed(db *gorm.DB) error {
	baseServices := []models.Service{
		{Name: "Taglio erba", Description: "Lawn mowing", UnitPrice: decimal.NewFromInt(55), Unit: models.UnitHourly, Active: true},
		{Name: "Potatura siepi", Description: "Hedge trimming", UnitPrice: decimal.NewFromInt(60), Unit: models.UnitHourly, Active: true},
		{Name: "Giornata giardiniere", Description: "Full gardener day", UnitPrice: decimal.NewFromInt(420), Unit: models.UnitDaily, Active: true},
		{Name: "Piantumazione arbusto", Description: "Shrub planting", UnitPrice: decimal.NewFromInt(35), Unit: models.UnitPerPiece, Active: true},
		{Name: "Smaltimento verde", Description: "Green waste disposal", UnitPrice: decimal.NewFromInt(90), Unit: models.UnitFlat, Active: true},
	}
	for _, s := range baseServices {
		var existing models.Service
		err := db.Where("name = ?", s.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&s).Error; err != nil {
				return fmt.Errorf("seed service %q: %w", s.Name, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("lookup service %q: %w", s.Name, err)
		}
	}
	return nil
}

// CreateAdmin creates a back-office account with a bcrypt hashed password.
func CreateAdmin(db *gorm.DB, email, password, name string, role models.Role) (*models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.AdminUser{Email: email, Name: name, PasswordHash: string(hash), Role: role}
	if err := db.Create(u).Error; err != nil {
		return nil, fmt.Errorf("create admin %s: %w", email, err)
	}
	return u, nil
}
