package core

import (
	"errors"
	"strings"
)

const (
	maxTypeLen  = 50
	maxNotesLen = 255
)

type (
	// User is an account that owns income and expense records.
	// The password hash never leaves the process boundary.
	User struct {
		ID             int64  `json:"id"`
		Email          string `json:"email"`
		HashedPassword string `json:"-"`
	}

	// Income is a single money-in record owned by exactly one user.
	Income struct {
		ID      int64   `json:"id"`
		Date    Date    `json:"date"`
		Type    string  `json:"type"`
		Value   float64 `json:"value"`
		Notes   *string `json:"notes"`
		OwnerID int64   `json:"owner_id"`
	}

	// Expense is a single money-out record. Installment and recurrence
	// fields are stored as metadata only; nothing in this service expands
	// them into future-dated records.
	Expense struct {
		ID                 int64    `json:"id"`
		Date               Date     `json:"date"`
		Value              float64  `json:"value"`
		Type               string   `json:"type"`
		IsInstallment      bool     `json:"is_installment"`
		InstallmentCount   *int64   `json:"installment_count"`
		InstallmentValue   *float64 `json:"installment_value"`
		IsRecurring        bool     `json:"is_recurring"`
		RecurringStartDate *Date    `json:"recurring_start_date"`
		Notes              *string  `json:"notes"`
		OwnerID            int64    `json:"owner_id"`
	}
)

var (
	ErrInvalidDate             = errors.New("invalid date")
	ErrInvalidValue            = errors.New("value must be positive")
	ErrEmptyType               = errors.New("empty type")
	ErrTypeTooLong             = errors.New("type too long (max 50 characters)")
	ErrNotesTooLong            = errors.New("notes too long (max 255 characters)")
	ErrInvalidInstallmentCount = errors.New("installment count must be positive")
	ErrInvalidInstallmentValue = errors.New("installment value must be positive")
	ErrEmptyEmail              = errors.New("empty email")
	ErrEmptyPassword           = errors.New("empty password")
)

func (i Income) Validate() error {
	if i.Date.IsZero() {
		return ErrInvalidDate
	}
	if i.Value <= 0 {
		return ErrInvalidValue
	}
	if err := validateType(i.Type); err != nil {
		return err
	}
	return validateNotes(i.Notes)
}

func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if e.Value <= 0 {
		return ErrInvalidValue
	}
	if err := validateType(e.Type); err != nil {
		return err
	}
	// Installment fields must be positive when present. Whether they are
	// meaningful without is_installment is not checked; they are metadata.
	if e.InstallmentCount != nil && *e.InstallmentCount <= 0 {
		return ErrInvalidInstallmentCount
	}
	if e.InstallmentValue != nil && *e.InstallmentValue <= 0 {
		return ErrInvalidInstallmentValue
	}
	return validateNotes(e.Notes)
}

func validateType(t string) error {
	if strings.TrimSpace(t) == "" {
		return ErrEmptyType
	}
	if len([]rune(t)) > maxTypeLen {
		return ErrTypeTooLong
	}
	return nil
}

func validateNotes(notes *string) error {
	if notes != nil && len([]rune(*notes)) > maxNotesLen {
		return ErrNotesTooLong
	}
	return nil
}
