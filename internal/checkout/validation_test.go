package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhonePattern(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"+56912345678", true},
		{"+56 9 1234 5678", true},
		{"56912345678", true},
		{"912345678", true},
		{"9 1234 5678", true},
		{"+56 2 1234 5678", false},
		{"91234567", false},
		{"9123456789", false},
		{"+1 9 1234 5678", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			form := validIdentity()
			form.Phone = tt.phone
			errs := ValidateIdentity(form)
			if tt.valid {
				assert.Nil(t, errs)
			} else {
				assert.Contains(t, errs, "phone")
			}
		})
	}
}

func TestEmailPattern(t *testing.T) {
	valid := []string{"a@b.cl", "ana.rojas+pasteles@example.com"}
	invalid := []string{"ana", "ana@", "ana@example", "ana @example.cl", "@example.cl"}

	for _, email := range valid {
		form := validIdentity()
		form.Email = email
		assert.Nil(t, ValidateIdentity(form), email)
	}
	for _, email := range invalid {
		form := validIdentity()
		form.Email = email
		assert.Contains(t, ValidateIdentity(form), "email", email)
	}
}

func TestValidateDelivery_DayGranularityInLocation(t *testing.T) {
	// 01:30 UTC on the 11th is still the 10th in Santiago.
	now := time.Date(2026, 3, 11, 1, 30, 0, 0, time.UTC)

	form := validDelivery()
	form.Date = "2026-03-10"

	assert.Nil(t, ValidateDelivery(form, now, santiago))
	assert.Contains(t, ValidateDelivery(form, now, time.UTC), "date")
}

func TestValidateDelivery_RequiredFields(t *testing.T) {
	errs := ValidateDelivery(DeliveryForm{}, fixedNow(), santiago)

	assert.Contains(t, errs, "address")
	assert.Contains(t, errs, "date")
	assert.NotContains(t, errs, "comuna")
	assert.NotContains(t, errs, "paymentMethod")
}

func TestFieldErrors_Error(t *testing.T) {
	errs := FieldErrors{"phone": "is required", "email": "is required"}

	assert.Equal(t, "validation failed: email: is required; phone: is required", errs.Error())
}

func TestStageTransitions(t *testing.T) {
	assert.Equal(t, StageDelivery, next[StageIdentity])
	assert.Equal(t, StageConfirm, next[StageDelivery])
	assert.Equal(t, StageSuccess, next[StageConfirm])
	_, ok := next[StageSuccess]
	assert.False(t, ok)
	_, ok = previous[StageIdentity]
	assert.False(t, ok)
	assert.True(t, StageSuccess.IsTerminal())
	assert.False(t, StageConfirm.IsTerminal())
}
