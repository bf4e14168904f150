package fusefs

import (
	"errors"
	"os"
	"syscall"

	"deskfs/internal/logging"
	"deskfs/internal/vfs"
)

var (
	errLogger = logging.GetLogger().WithPrefix("fuse-error")
)

// ToFuseError converts a filesystem error to the errno FUSE expects.
func ToFuseError(err error) error {
	if err == nil {
		return nil
	}

	var fsErr *vfs.Error
	if errors.As(err, &fsErr) {
		errLogger.Trace("Converting filesystem error to FUSE error: %v", fsErr)
	}

	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, vfs.ErrNotADirectory):
		return syscall.ENOTDIR
	case errors.Is(err, vfs.ErrIsADirectory):
		return syscall.EISDIR
	case errors.Is(err, vfs.ErrAlreadyExists):
		return syscall.EEXIST
	case errors.Is(err, vfs.ErrInvalidPath):
		return syscall.EINVAL
	case errors.Is(err, os.ErrPermission):
		return syscall.EACCES
	default:
		errLogger.Debug("Unknown error type, returning EIO: %v", err)
		return syscall.EIO
	}
}

// Operation names used for metrics labels.
const (
	OpLookup  = "lookup"
	OpReadDir = "readdir"
	OpRead    = "read"
	OpWrite   = "write"
	OpCreate  = "create"
	OpMkdir   = "mkdir"
	OpRemove  = "remove"
	OpRename  = "rename"
	OpSetattr = "setattr"
)
