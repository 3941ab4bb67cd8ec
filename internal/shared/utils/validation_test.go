package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/errors"
)

type sampleRequest struct {
	Reason   string `json:"reason" validate:"notblank"`
	Amount   int64  `json:"amount" validate:"gt=0"`
	Currency string `json:"currency" validate:"required,iso4217"`
	Interval string `json:"interval" validate:"oneof=DAY WEEK MONTH YEAR"`
}

func TestValidateStruct(t *testing.T) {
	err := ValidateStruct(sampleRequest{Reason: "ok", Amount: 100, Currency: "IDR", Interval: "MONTH"})
	assert.NoError(t, err)

	err = ValidateStruct(sampleRequest{Reason: "   ", Amount: 0, Currency: "XYZ1", Interval: "HOUR"})
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Details, "reason is required")
	assert.Contains(t, appErr.Details, "amount must be greater than 0")
	assert.Contains(t, appErr.Details, "currency must be an ISO 4217 currency code")
	assert.Contains(t, appErr.Details, "interval must be one of [DAY WEEK MONTH YEAR]")
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 1, TotalPages(5, 0))
}

type noteRequest struct {
	Note string `json:"note" validate:"max=4"`
	Skip string `json:"-" validate:"max=1"`
}

func TestValidateStruct_StringLengthAndIgnoredTag(t *testing.T) {
	err := ValidateStruct(noteRequest{Note: "too long"})
	require.Error(t, err)
	details := errors.GetAppError(err).Details
	assert.Equal(t, "note must be at most 4 characters long", details)

	err = ValidateStruct(noteRequest{Note: "ok", Skip: "xx"})
	require.Error(t, err)
	assert.Contains(t, errors.GetAppError(err).Details, "must be at most 1 characters long")
}
