package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. Admins manage the catalog, orders and user accounts;
// everyone else registers as a plain user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account document in the users collection. The password
// hash is never serialized to JSON. OTP and reset-token fields are
// transient: they are set for the duration of a verification or
// password-reset flow and cleared once consumed.
//
// Fields:
//  PasswordHash         - bcrypt hash of the password.
//  IsVerified           - set exactly once, after a successful OTP check.
//  OTP / OTPExpire      - pending email verification code (5 min TTL).
//  ResetPasswordToken   - SHA-256 hex digest of the reset token (30 min TTL).
//  LastSeen             - stamped at login, verification and profile reads.
type User struct {
	ID                 primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name               string             `json:"name" bson:"name"`
	Email              string             `json:"email" bson:"email"`
	PasswordHash       string             `json:"-" bson:"password_hash"`
	Avatar             string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Role               string             `json:"role" bson:"role"`
	IsVerified         bool               `json:"isVerified" bson:"is_verified"`
	OTP                string             `json:"-" bson:"otp,omitempty"`
	OTPExpire          *time.Time         `json:"-" bson:"otp_expire,omitempty"`
	LastSeen           time.Time          `json:"lastSeen" bson:"last_seen"`
	ResetPasswordToken string             `json:"-" bson:"reset_password_token,omitempty"`
	ResetTokenExpire   *time.Time         `json:"-" bson:"reset_token_expire,omitempty"`
	CreatedAt          time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updated_at"`
}

// OTPValid reports whether the stored OTP matches and has not expired.
func (u *User) OTPValid(otp string, now time.Time) bool {
	if u.OTP == "" || u.OTPExpire == nil {
		return false
	}
	return u.OTP == otp && now.Before(*u.OTPExpire)
}

// ClearOTP drops the pending verification code.
func (u *User) ClearOTP() {
	u.OTP = ""
	u.OTPExpire = nil
}

// ClearResetToken drops the pending password-reset token.
func (u *User) ClearResetToken() {
	u.ResetPasswordToken = ""
	u.ResetTokenExpire = nil
}
