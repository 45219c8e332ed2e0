package cafeteria

import "errors"

// ErrNoInformation means the requested date lies outside every known
// data span: nothing can ever be returned for it.
var ErrNoInformation = errors.New("no information for the requested date")

// ErrNoOperation means the date falls inside a known span but the
// cafeteria published nothing for it, e.g. a weekend or holiday.
var ErrNoOperation = errors.New("no cafeteria operation on the requested date")
