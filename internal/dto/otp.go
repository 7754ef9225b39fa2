package dto

// SendOTPRequest asks for a passcode to be mailed to Email.
type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest checks a previously issued passcode.
type VerifyOTPRequest struct {
	Email string     `json:"email" validate:"required"`
	OTP   FlexString `json:"otp" validate:"required"`
}

// VerifyOTPResponse is returned by the verify endpoint for both outcomes.
type VerifyOTPResponse struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}
