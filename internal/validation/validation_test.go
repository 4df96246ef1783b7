package validation

import (
	"testing"

	"sternwerk/internal/models"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "test @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "password exactly 8 characters",
			password: "pass1234",
			wantErr:  false,
		},
		{
			name:     "password too short",
			password: "pass123",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "Emma",
			wantErr: false,
		},
		{
			name:    "name with space",
			input:   "Emma Marie",
			wantErr: false,
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: true,
		},
		{
			name:    "name too short",
			input:   "E",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGrade(t *testing.T) {
	tests := []struct {
		name    string
		grade   int
		wantErr bool
	}{
		{name: "first grade", grade: 1, wantErr: false},
		{name: "fourth grade", grade: 4, wantErr: false},
		{name: "grade zero", grade: 0, wantErr: true},
		{name: "grade five", grade: 5, wantErr: true},
		{name: "negative grade", grade: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGrade(tt.grade)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGrade(%d) error = %v, wantErr %v", tt.grade, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStarPrice(t *testing.T) {
	tests := []struct {
		name    string
		price   int
		wantErr bool
	}{
		{name: "one star", price: 1, wantErr: false},
		{name: "expensive wish", price: 500, wantErr: false},
		{name: "zero stars", price: 0, wantErr: true},
		{name: "negative price", price: -10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStarPrice(tt.price)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStarPrice(%d) error = %v, wantErr %v", tt.price, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSubject(t *testing.T) {
	if err := ValidateSubject(models.SubjectMathe); err != nil {
		t.Errorf("mathe should be a valid subject: %v", err)
	}
	if err := ValidateSubject("astrologie"); err == nil {
		t.Error("unknown subject should be rejected")
	}
}

func TestValidateTheme(t *testing.T) {
	if err := ValidateTheme(models.ThemeDino); err != nil {
		t.Errorf("dino should be a valid theme: %v", err)
	}
	if err := ValidateTheme("vaporwave"); err == nil {
		t.Error("unknown theme should be rejected")
	}
}

func TestValidateEventCategory(t *testing.T) {
	if err := ValidateEventCategory(models.EventSchule); err != nil {
		t.Errorf("schule should be a valid category: %v", err)
	}
	if err := ValidateEventCategory("urlaub"); err == nil {
		t.Error("unknown category should be rejected")
	}
}
