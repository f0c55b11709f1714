package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMobile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"13800000000", true},
		{"19912345678", true},
		{"12800000000", false}, // 2桁目が範囲外
		{"1380000000", false},
		{"138000000000", false},
		{"+8613800000000", false},
		{"1380000000a", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsMobile(tt.in))
		})
	}
}

func TestRegisterOn(t *testing.T) {
	t.Parallel()

	v := validator.New()
	require.NoError(t, RegisterOn(v))

	type req struct {
		Phone string `validate:"required,mobile"`
	}

	assert.NoError(t, v.Struct(req{Phone: "13900000001"}))
	err := v.Struct(req{Phone: "12345"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'mobile' tag")
}

func TestRegister(t *testing.T) {
	require.NoError(t, Register())
	// 2回目も成功する
	require.NoError(t, Register())
}
