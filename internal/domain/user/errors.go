package user

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserEmailExists        = errors.New("email already registered")
	ErrAppleIDExists          = errors.New("apple id already linked to another account")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)
