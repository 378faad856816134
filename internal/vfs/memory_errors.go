package vfs

import "errors"

var (
	errNotExist = errors.New("no such file or directory")
	errLoop     = errors.New("too many levels of symbolic links")
)
