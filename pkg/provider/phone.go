package provider

// ValidatePhoneNumber checks the recognized Australian format: +61
// followed by 9 digits (12 characters total).
func ValidatePhoneNumber(number string) error {
	if len(number) != 12 || number[:3] != "+61" {
		return &ValidationError{Reason: "invalid phone number format, must be +61 followed by 9 digits"}
	}
	for _, r := range number[3:] {
		if r < '0' || r > '9' {
			return &ValidationError{Reason: "invalid phone number format, must be +61 followed by 9 digits"}
		}
	}
	return nil
}
