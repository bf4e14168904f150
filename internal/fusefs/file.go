package fusefs

import (
	"context"
	"syscall"

	"deskfs/internal/logging"
	"deskfs/internal/metrics"
	"deskfs/internal/vfs"

	"bazil.org/fuse"
)

var (
	fileLogger = logging.GetLogger().WithPrefix("file")
)

// File is a regular file of the virtual tree. It serves as its own handle,
// so reads and writes always see the current content.
type File struct {
	fs   *FS
	path string
}

func (f *File) current() (vfs.File, error) {
	entry, ok := f.fs.tree.Get(f.path)
	if !ok {
		return vfs.File{}, syscall.ENOENT
	}
	file, ok := entry.(vfs.File)
	if !ok {
		return vfs.File{}, syscall.EISDIR
	}
	return file, nil
}

// Attr implements the Node interface, returning the file's attributes.
func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	file, err := f.current()
	if err != nil {
		fileLogger.Warn("Stat of vanished file %q", f.path)
		return err
	}

	size := safeIntToUint64(file.Size())
	a.Mode = 0644
	a.Size = size
	a.Uid = f.fs.uid
	a.Gid = f.fs.gid
	a.Mtime = f.fs.mounted
	a.Atime = f.fs.mounted
	a.Ctime = f.fs.mounted
	a.BlockSize = 4096
	a.Blocks = (size + 511) / 512

	fileLogger.Trace("File attributes for %q: size=%d", f.path, a.Size)
	return nil
}

// ReadAll implements the HandleReadAller interface.
func (f *File) ReadAll(_ context.Context) ([]byte, error) {
	file, err := f.current()
	metrics.RecordFuseRequest(OpRead, err)
	if err != nil {
		return nil, err
	}
	fileLogger.Trace("Read %d bytes from %q", file.Size(), f.path)
	return []byte(file.Content()), nil
}

// Write implements the HandleWriter interface, splicing the request data
// into the current content.
func (f *File) Write(_ context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	f.fs.writeMu.Lock()
	defer f.fs.writeMu.Unlock()

	file, err := f.current()
	if err != nil {
		metrics.RecordFuseRequest(OpWrite, err)
		return err
	}

	content, err := splice([]byte(file.Content()), req.Offset, req.Data)
	if err != nil {
		fileLogger.Warn("Rejected write of %d bytes to %q at offset %d: %v", len(req.Data), f.path, req.Offset, err)
		metrics.RecordFuseRequest(OpWrite, err)
		return err
	}
	err = f.fs.tree.WriteFile(f.path, string(content))
	metrics.RecordFuseRequest(OpWrite, err)
	if err != nil {
		return ToFuseError(err)
	}

	resp.Size = len(req.Data)
	fileLogger.Debug("Wrote %d bytes to %q at offset %d", len(req.Data), f.path, req.Offset)
	return nil
}

// Setattr implements the NodeSetattrer interface. Only size changes are
// applied; ownership and mode are fixed by the mount.
func (f *File) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	if req.Valid.Size() {
		f.fs.writeMu.Lock()
		file, err := f.current()
		if err == nil {
			var content []byte
			content, err = resize([]byte(file.Content()), req.Size)
			if err == nil {
				err = ToFuseError(f.fs.tree.WriteFile(f.path, string(content)))
			}
		}
		f.fs.writeMu.Unlock()

		metrics.RecordFuseRequest(OpSetattr, err)
		if err != nil {
			return err
		}
		fileLogger.Debug("Resized %q to %d bytes", f.path, req.Size)
	}
	return f.Attr(ctx, &resp.Attr)
}

// Fsync implements the NodeFsyncer interface. Writes are applied
// immediately, so there is nothing to flush.
func (f *File) Fsync(_ context.Context, _ *fuse.FsyncRequest) error {
	return nil
}

// AppNode exposes an application link as a read-only file whose content is
// the id of the application it launches.
type AppNode struct {
	fs   *FS
	path string
}

func (n *AppNode) current() (vfs.App, error) {
	entry, ok := n.fs.tree.Get(n.path)
	if !ok {
		return vfs.App{}, syscall.ENOENT
	}
	app, ok := entry.(vfs.App)
	if !ok {
		return vfs.App{}, syscall.EINVAL
	}
	return app, nil
}

// Attr implements the Node interface.
func (n *AppNode) Attr(_ context.Context, a *fuse.Attr) error {
	app, err := n.current()
	if err != nil {
		return err
	}
	a.Mode = 0444
	a.Size = safeIntToUint64(len(app.Target()))
	a.Uid = n.fs.uid
	a.Gid = n.fs.gid
	a.Mtime = n.fs.mounted
	a.Atime = n.fs.mounted
	a.Ctime = n.fs.mounted
	return nil
}

// ReadAll implements the HandleReadAller interface.
func (n *AppNode) ReadAll(_ context.Context) ([]byte, error) {
	app, err := n.current()
	metrics.RecordFuseRequest(OpRead, err)
	if err != nil {
		return nil, err
	}
	return []byte(app.Target()), nil
}
