package rivalrydb

import "errors"

var ErrNotFound = errors.New("not found")
