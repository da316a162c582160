package shift

import "errors"

var (
	// ErrConfigurationInvalid means a policy violates its format or threshold ordering rules.
	ErrConfigurationInvalid = errors.New("shift configuration invalid")
	ErrPolicyNotFound       = errors.New("shift policy not found")
)
