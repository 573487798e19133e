package store

// OTP is a pending one-time login code. At most one code exists per email;
// issuing a new one replaces the old. Codes are deleted on successful
// verification and on expiry.
type OTP struct {
	Email     string
	Code      string
	ExpiresTs int64
}
