package pgstore

import "errors"

var ErrCorruptData = errors.New("notification data column is not valid JSON")
