package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		addr  string
		valid bool
	}{
		{"new@example.com", true},
		{"First.Last+tag@clinic.org", true},
		{"", false},
		{"not-an-email", false},
		{"missing@", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			err := Email(tt.addr)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateStruct(t *testing.T) {
	type input struct {
		Name  string `validate:"required"`
		Level string `validate:"oneof=read write admin"`
	}

	v := New()
	require.NoError(t, v.Validate(input{Name: "x", Level: "read"}))

	err := v.Validate(input{Level: "read"})
	require.Error(t, err)
	assert.Equal(t, "Name is required", err.Error())

	err = v.Validate(input{Name: "x", Level: "owner"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")
}
