package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateID(t *testing.T) {
	id, err := validateID("  6f1c  ")
	require.NoError(t, err)
	assert.Equal(t, "6f1c", id)

	_, err = validateID("   ")
	assert.EqualError(t, err, "ID cannot be empty")
}

func TestValidateStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"active", "active", false},
		{"INACTIVE", "inactive", false},
		{" active ", "active", false},
		{"actif", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := validateStatus(tt.input)
			if tt.wantErr {
				assert.ErrorContains(t, err, "must be active or inactive")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseShipmentDate(t *testing.T) {
	now := time.Date(2025, time.February, 14, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"empty means today", "", "2025-02-14", false},
		{"today keyword", "Today", "2025-02-14", false},
		{"explicit date", "2024-12-01", "2024-12-01", false},
		{"wrong layout", "01/12/2024", "", true},
		{"impossible day", "2025-02-30", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseShipmentDate(tt.input, now)
			if tt.wantErr {
				assert.ErrorContains(t, err, "expected YYYY-MM-DD")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.answer), func(t *testing.T) {
			cmd := &cobra.Command{}
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetIn(strings.NewReader(tt.answer))

			assert.Equal(t, tt.want, confirm(cmd, "Delete site?"))
			assert.Equal(t, "Delete site? (y/N): ", out.String())
		})
	}
}
