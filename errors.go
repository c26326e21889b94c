package opticsphere

import "errors"

// ErrAlreadyRun is returned by [Driver.Run] when called more than once
// on the same Driver. A Driver relinquishes its point array on its
// first Run, successful or not, so a second call has nothing left to
// operate on.
var ErrAlreadyRun = errors.New("opticsphere: run already invoked on this driver")
