package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCasingFromTrigger(t *testing.T) {
	tests := []struct {
		typed string
		style string
		want  Casing
	}{
		{":hello", "", CasingNone},
		{":Hello", "", CasingCapitalize},
		{":HELLO", "", CasingUppercase},
		{":H", "", CasingCapitalize},
		{":HELLO", StyleCapitalize, CasingCapitalize},
		{":Hello", StyleCapitalizeWords, CasingCapitalizeWords},
		{":HELLO", StyleCapitalizeWords, CasingCapitalizeWords},
		{":123", "", CasingNone},
	}

	for _, tt := range tests {
		t.Run(tt.typed+"/"+tt.style, func(t *testing.T) {
			assert.Equal(t, tt.want, CasingFromTrigger(tt.typed, tt.style))
		})
	}
}

func TestApplyCasing(t *testing.T) {
	assert.Equal(t, "hello there", ApplyCasing("hello there", CasingNone))
	assert.Equal(t, "HELLO THERE", ApplyCasing("hello there", CasingUppercase))
	assert.Equal(t, "Hello there", ApplyCasing("hello there", CasingCapitalize))
	assert.Equal(t, "  Élan vital", ApplyCasing("  élan vital", CasingCapitalize))
	assert.Equal(t, "Hello There", ApplyCasing("hello there", CasingCapitalizeWords))
	assert.Equal(t, "123", ApplyCasing("123", CasingCapitalize))
}
