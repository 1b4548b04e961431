package domain

import (
	"github.com/pkg/errors"
)

var (
	ErrIdentityCacheMiss = errors.New("viewer identity not found in cache")
)
