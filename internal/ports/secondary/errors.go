package secondary

import "errors"

// ErrNotFound is returned by repositories when the requested row does
// not exist. The service layer translates it into its own taxonomy.
var ErrNotFound = errors.New("not found")
