package repositories

import "errors"

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
)
