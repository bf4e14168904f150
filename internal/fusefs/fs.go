// Package fusefs serves the live virtual filesystem over FUSE so the desktop
// tree can be browsed and edited with ordinary host tools.
package fusefs

import (
	"fmt"
	"os"
	"sync"
	"time"

	"deskfs/internal/logging"
	"deskfs/internal/vfs"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	fsLogger = logging.GetLogger().WithPrefix("fuse")
)

// Options configures the ownership and visibility of the mount.
type Options struct {
	UID        uint32
	GID        uint32
	AllowOther bool
}

// FS adapts a *vfs.FileSystem to the bazil.org/fuse node API. Every request
// goes straight to the shared tree, so changes made through the mount are
// visible to the terminal and notify subscribers like any other mutation.
type FS struct {
	tree       *vfs.FileSystem
	conn       *fuse.Conn
	uid        uint32
	gid        uint32
	allowOther bool
	mounted    time.Time

	// writeMu serializes read-modify-write of file content.
	writeMu sync.Mutex
	done    chan error
}

// New creates a FUSE adapter for tree.
func New(tree *vfs.FileSystem, opts Options) *FS {
	fsLogger.Debug("Creating FUSE adapter (uid=%d gid=%d allow_other=%v)",
		opts.UID, opts.GID, opts.AllowOther)
	return &FS{
		tree:       tree,
		uid:        opts.UID,
		gid:        opts.GID,
		allowOther: opts.AllowOther,
		mounted:    time.Now(),
	}
}

// Root implements the fusefs.FS interface, returning the root directory node.
func (f *FS) Root() (fusefs.Node, error) {
	fsLogger.Trace("Getting root directory node")
	return &Dir{fs: f, path: vfs.Root}, nil
}

func waitForMount(mountpoint string) error {
	for i := 0; i < 30; i++ {
		info, err := os.Stat(mountpoint)
		if err == nil && info.IsDir() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("mount point not available after 3 seconds")
}

// Mount mounts the filesystem and starts serving it in the background.
// Done reports when serving stops.
func (f *FS) Mount(mountPoint string) error {
	fsLogger.Info("Mounting virtual filesystem")
	fsLogger.Debug("Mount point: %s", mountPoint)

	info, err := os.Stat(mountPoint)
	if err != nil {
		return fmt.Errorf("mount point not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("mount point %s is not a directory", mountPoint)
	}

	mountOpts := []fuse.MountOption{
		fuse.FSName("deskfs"),
		fuse.Subtype("deskfs"),
		fuse.DefaultPermissions(),
		fuse.AsyncRead(),
	}
	if f.allowOther {
		mountOpts = append(mountOpts, fuse.AllowOther())
	}

	c, err := fuse.Mount(mountPoint, mountOpts...)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	f.conn = c
	f.mounted = time.Now()
	f.done = make(chan error, 1)

	go func() {
		err := fusefs.Serve(c, f)
		if err != nil {
			fsLogger.Error("FUSE server error: %v", err)
		}
		fsLogger.Debug("FUSE server stopped")
		f.done <- err
	}()

	if err := waitForMount(mountPoint); err != nil {
		c.Close()
		fsLogger.Error("Mount point not ready: %v", err)
		return fmt.Errorf("mount point failed to initialize: %w", err)
	}

	fsLogger.Info("Filesystem mounted at %s", mountPoint)
	return nil
}

// Done returns a channel that receives the serve result once the kernel
// connection closes. It is nil before Mount.
func (f *FS) Done() <-chan error {
	return f.done
}

// Unmount detaches the filesystem and closes the connection.
func (f *FS) Unmount(mountPoint string) error {
	fsLogger.Info("Unmounting filesystem from: %s", mountPoint)
	if f.conn == nil {
		return nil
	}

	if err := fuse.Unmount(mountPoint); err != nil {
		fsLogger.Error("Unmount failed: %v", err)
		return err
	}
	if err := f.conn.Close(); err != nil {
		fsLogger.Warn("Closing FUSE connection: %v", err)
	}
	f.conn = nil
	fsLogger.Info("Unmount completed successfully")
	return nil
}
