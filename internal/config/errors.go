package config

import "codeberg.org/mutker/sysmond/internal/errors"

const (
	ErrReadConfig          = errors.ErrReadConfig
	ErrInvalidValue        = errors.ErrorCode("config_invalid_value")
	ErrInvalidBattery      = errors.ErrorCode("config_invalid_battery")
	ErrTooManyInterfaces   = errors.ErrorCode("config_too_many_interfaces")
	ErrInterfaceNameLength = errors.ErrorCode("config_interface_name_too_long")
	ErrInvalidLogLevel     = errors.ErrInvalidLogLevel
	ErrInvalidCommand      = errors.ErrorCode("config_invalid_command")
)

func init() {
	errors.RegisterMessage(ErrInvalidValue, "Invalid configuration value")
	errors.RegisterMessage(ErrInvalidBattery, "Battery configuration is invalid")
	errors.RegisterMessage(ErrTooManyInterfaces, "Too many network interfaces")
	errors.RegisterMessage(ErrInterfaceNameLength, "Network interface name too long")
	errors.RegisterMessage(ErrInvalidCommand, "Invalid power off command")
}
