package vfs

import "errors"

// ErrCrossDevice is returned by Link when src's parent directory and dst
// reside on different devices — an ordinary POSIX hard link is impossible
// in that case.
var ErrCrossDevice = errors.New("vfs: cross-device hard link")
