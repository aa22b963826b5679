package sim

import "errors"

var (
	ErrInvalidExtent      = errors.New("sim: screen and world extents must be positive")
	ErrEmptyCatalog       = errors.New("sim: sprite catalog is empty")
	ErrInvalidSprite      = errors.New("sim: sprite pixel size must be positive")
	ErrInvalidEntityCount = errors.New("sim: entity count out of range")
	ErrInvalidThickness   = errors.New("sim: wall thickness must be positive")
	ErrNotReady           = errors.New("sim: arena not built")
)
