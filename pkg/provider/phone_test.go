package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhoneNumber(t *testing.T) {
	valid := []string{
		"+61412345678",
		"+61298765432",
		"+61000000000",
	}
	for _, number := range valid {
		assert.NoError(t, ValidatePhoneNumber(number), "expected %s to be valid", number)
	}

	invalid := []string{
		"",
		"0412345678",    // missing country code
		"+64412345678",  // wrong country
		"+6141234567",   // 8 digits
		"+614123456789", // 10 digits
		"+6141234567a",  // non-digit
		"+61 412345678", // embedded space
		"61412345678",   // missing plus
		"+61412345678 ", // trailing space
	}
	for _, number := range invalid {
		err := ValidatePhoneNumber(number)
		assert.Error(t, err, "expected %s to be rejected", number)
		assert.True(t, IsValidationError(err), "expected validation error for %s", number)
	}
}
