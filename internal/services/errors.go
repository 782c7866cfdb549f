package services

import "errors"

var (
	ErrInvalidProductID = errors.New("invalid product ID")
	ErrEmptyBatch       = errors.New("CSV file is empty")
	ErrMissingField     = errors.New("missing required product field")
	ErrInvalidNumeric   = errors.New("invalid price, sellPrice, or stock value")
	ErrPriceInversion   = errors.New("price must be greater than or equal to sellPrice")
)
