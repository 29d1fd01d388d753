package domain

import "errors"

var (
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrInvalidRoute        = errors.New("invalid route: vehicle is already at its destination")
	ErrMissingDestination  = errors.New("directed provider requires a destination")
	ErrLocationUnavailable = errors.New("location provider could not produce a position")
	ErrNegativeBalance     = errors.New("initial balance must not be negative")
	ErrNegativeRate        = errors.New("toll rate must not be negative")
	ErrInvalidStep         = errors.New("step size must be positive")
)
