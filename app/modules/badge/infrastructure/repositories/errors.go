package badgedb

import "errors"

var ErrNotFound = errors.New("not found")
