package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Sentinel errors the service layer branches on. ErrNotFound and ErrDuplicate
// alias the gorm sentinels so gorm-level errors flow through unchanged.
var (
	ErrNotFound          = gorm.ErrRecordNotFound
	ErrDuplicate         = gorm.ErrDuplicatedKey
	ErrIllegalTransition = errors.New("illegal state transition")
	ErrGuardFailed       = errors.New("row no longer in required status")
	ErrCatalog           = errors.New("invalid catalog reference")
)
