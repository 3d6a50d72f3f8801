package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "*****", MaskSecret("abc"))
	assert.Equal(t, "*****", MaskSecret("12345678"))
	assert.Equal(t, "ghp_*****", MaskSecret("ghp_abcdefghijklmnop"))
}
