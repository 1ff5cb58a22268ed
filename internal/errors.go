package internal

import "errors"

var (
	ErrReadConfigurationFailure = errors.New("failed to read configuration")
	ErrLoadConfigurationFailure = errors.New("failed to load configuration")

	ErrInvalidGuildID = errors.New("invalid guild id")
	ErrInvalidRoleID  = errors.New("invalid role id")
)
