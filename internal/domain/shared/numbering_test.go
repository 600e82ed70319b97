package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDocumentNumber(t *testing.T) {
	march := time.Date(2026, time.March, 31, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "INV-202603", MonthPrefix("INV", march))
	assert.Equal(t, "INV-202603-0001", FormatDocumentNumber("INV", march, 1))
	assert.Equal(t, "PUR-202603-12345", FormatDocumentNumber("PUR", march, 12345))
}

func TestMonthPrefix_UsesUTC(t *testing.T) {
	// 2026-04-01 01:00 in UTC+2 is still March in UTC
	local := time.Date(2026, time.April, 1, 1, 0, 0, 0, time.FixedZone("UTC+2", 2*3600))
	assert.Equal(t, "JV-202603", MonthPrefix("JV", local))
}
