package fusefs

import (
	"context"
	"os"
	"syscall"

	"deskfs/internal/logging"
	"deskfs/internal/metrics"
	"deskfs/internal/vfs"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	dirLogger = logging.GetLogger().WithPrefix("dir")
)

// Dir is a directory of the virtual tree. It holds only its path; every
// request looks the tree up again.
type Dir struct {
	fs   *FS
	path string
}

// Attr implements the Node interface, returning directory attributes.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	dirLogger.Trace("Getting attributes for directory: %q", d.path)

	a.Mode = os.ModeDir | 0755
	a.Uid = d.fs.uid
	a.Gid = d.fs.gid
	a.Mtime = d.fs.mounted
	a.Ctime = d.fs.mounted
	a.Atime = d.fs.mounted
	return nil
}

// node builds the FUSE node for an entry at path.
func (d *Dir) node(path string, entry vfs.Entry) fusefs.Node {
	switch entry.(type) {
	case vfs.Directory:
		return &Dir{fs: d.fs, path: path}
	case vfs.App:
		return &AppNode{fs: d.fs, path: path}
	default:
		return &File{fs: d.fs, path: path}
	}
}

// Lookup implements the NodeStringLookuper interface, finding a child node.
func (d *Dir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	childPath := vfs.Join(d.path, name)
	dirLogger.Debug("Looking up %q", childPath)

	entry, ok := d.fs.tree.Get(childPath)
	if !ok {
		dirLogger.Trace("Path not found: %q", childPath)
		metrics.RecordFuseRequest(OpLookup, vfs.ErrNotFound)
		return nil, syscall.ENOENT
	}

	metrics.RecordFuseRequest(OpLookup, nil)
	return d.node(childPath, entry), nil
}

// ReadDirAll implements the HandleReadDirAller interface, listing directory
// contents in insertion order.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	dirLogger.Debug("Reading directory contents: %q", d.path)

	children, ok := d.fs.tree.List(d.path)
	if !ok {
		metrics.RecordFuseRequest(OpReadDir, vfs.ErrNotFound)
		return nil, syscall.ENOENT
	}

	entries := make([]fuse.Dirent, 0, len(children)+2)
	entries = append(entries, fuse.Dirent{Name: ".", Type: fuse.DT_Dir})
	entries = append(entries, fuse.Dirent{Name: "..", Type: fuse.DT_Dir})
	for _, child := range children {
		typ := fuse.DT_File
		if _, isDir := child.(vfs.Directory); isDir {
			typ = fuse.DT_Dir
		}
		entries = append(entries, fuse.Dirent{Name: child.Name(), Type: typ})
	}

	metrics.RecordFuseRequest(OpReadDir, nil)
	dirLogger.Debug("Directory %q contains %d entries", d.path, len(children))
	return entries, nil
}

// Mkdir implements the NodeMkdirer interface, creating a new directory.
func (d *Dir) Mkdir(_ context.Context, req *fuse.MkdirRequest) (fusefs.Node, error) {
	newPath := vfs.Join(d.path, req.Name)
	dirLogger.Info("Creating directory %q", newPath)

	err := d.fs.tree.CreateDirectory(newPath)
	metrics.RecordFuseRequest(OpMkdir, err)
	if err != nil {
		return nil, ToFuseError(err)
	}
	return &Dir{fs: d.fs, path: newPath}, nil
}

// Create implements the NodeCreater interface, creating an empty file. The
// returned node is also its own handle.
func (d *Dir) Create(_ context.Context, req *fuse.CreateRequest, _ *fuse.CreateResponse) (fusefs.Node, fusefs.Handle, error) {
	newPath := vfs.Join(d.path, req.Name)
	dirLogger.Info("Creating file %q", newPath)

	err := d.fs.tree.CreateFile(newPath, "")
	metrics.RecordFuseRequest(OpCreate, err)
	if err != nil {
		return nil, nil, ToFuseError(err)
	}

	entry, _ := d.fs.tree.Get(newPath)
	if _, isApp := entry.(vfs.App); isApp {
		// Create on an existing app succeeds without touching it.
		node := &AppNode{fs: d.fs, path: newPath}
		return node, node, nil
	}
	f := &File{fs: d.fs, path: newPath}
	return f, f, nil
}

// Remove implements the NodeRemover interface. rmdir only removes empty
// directories; unlink refuses directories.
func (d *Dir) Remove(_ context.Context, req *fuse.RemoveRequest) error {
	childPath := vfs.Join(d.path, req.Name)
	dirLogger.Info("Removing %q (isDir=%v)", childPath, req.Dir)

	entry, ok := d.fs.tree.Get(childPath)
	if !ok {
		metrics.RecordFuseRequest(OpRemove, vfs.ErrNotFound)
		return syscall.ENOENT
	}

	dir, isDir := entry.(vfs.Directory)
	switch {
	case req.Dir && !isDir:
		metrics.RecordFuseRequest(OpRemove, vfs.ErrNotADirectory)
		return syscall.ENOTDIR
	case !req.Dir && isDir:
		metrics.RecordFuseRequest(OpRemove, vfs.ErrIsADirectory)
		return syscall.EISDIR
	case isDir && dir.Len() > 0:
		dirLogger.Warn("Directory not empty: %q", childPath)
		metrics.RecordFuseRequest(OpRemove, syscall.ENOTEMPTY)
		return syscall.ENOTEMPTY
	}

	err := d.fs.tree.Delete(childPath)
	metrics.RecordFuseRequest(OpRemove, err)
	return ToFuseError(err)
}

// Rename implements the NodeRenamer interface. A file or app replaces an
// existing non-directory destination, as rename(2) does.
func (d *Dir) Rename(_ context.Context, req *fuse.RenameRequest, newDir fusefs.Node) error {
	target, ok := newDir.(*Dir)
	if !ok {
		dirLogger.Error("Rename target is not a directory node")
		metrics.RecordFuseRequest(OpRename, vfs.ErrInvalidPath)
		return syscall.EINVAL
	}

	oldPath := vfs.Join(d.path, req.OldName)
	newPath := vfs.Join(target.path, req.NewName)
	dirLogger.Info("Renaming %q to %q", oldPath, newPath)

	src, ok := d.fs.tree.Get(oldPath)
	if !ok {
		metrics.RecordFuseRequest(OpRename, vfs.ErrNotFound)
		return syscall.ENOENT
	}
	if dst, exists := d.fs.tree.Get(newPath); exists && oldPath != newPath {
		_, srcIsDir := src.(vfs.Directory)
		_, dstIsDir := dst.(vfs.Directory)
		if !srcIsDir && !dstIsDir {
			dirLogger.Debug("Replacing %q", newPath)
			if err := d.fs.tree.Delete(newPath); err != nil {
				metrics.RecordFuseRequest(OpRename, err)
				return ToFuseError(err)
			}
		}
	}

	err := d.fs.tree.Rename(oldPath, newPath)
	metrics.RecordFuseRequest(OpRename, err)
	return ToFuseError(err)
}
