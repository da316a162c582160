package auth

import "errors"

var (
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrTokenExpired           = errors.New("token has expired")
	ErrEmployeeClaimRequired  = errors.New("employee id not found in token")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)
