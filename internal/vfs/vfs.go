package vfs

import (
	"fmt"
	"reflect"
	"sync"

	"deskfs/internal/logging"
	"deskfs/internal/metrics"
)

var (
	vfsLogger = logging.GetLogger().WithPrefix("vfs")
	errLogger = logging.GetLogger().WithPrefix("error")
)

// FileSystem owns the single in-memory tree. Every consumer of a running
// session shares one instance, handed out explicitly by its creator.
//
// All operations complete synchronously. The tree is guarded by a mutex
// only because the FUSE server calls in from its own goroutines.
type FileSystem struct {
	mu   sync.RWMutex
	root *node

	subMu       sync.Mutex
	subscribers []subscription
	nextSubID   uint64
}

// Subscriber is notified after every successful mutation.
type Subscriber interface {
	Changed()
}

// SubscriberFunc adapts an ordinary function to Subscriber.
type SubscriberFunc func()

// Changed calls f.
func (f SubscriberFunc) Changed() { f() }

type subscription struct {
	id  uint64
	sub Subscriber
}

// New creates a filesystem seeded from t. The template is copied; later
// changes to it do not affect the filesystem and vice versa.
func New(t *Template) (*FileSystem, error) {
	if t == nil {
		return nil, fmt.Errorf("seed template is nil")
	}
	kind, err := ParseKind(t.Type)
	if err != nil {
		return nil, fmt.Errorf("invalid seed root: %w", err)
	}
	if kind != KindDirectory {
		return nil, fmt.Errorf("invalid seed root: must be a directory, got %v", kind)
	}

	root, err := build(t, Root)
	if err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	root.name = Root

	vfsLogger.Info("Virtual filesystem created with %d entries", root.count())
	return &FileSystem{root: root}, nil
}

// NewDefault creates a filesystem seeded from DefaultTemplate.
func NewDefault() *FileSystem {
	fs, err := New(DefaultTemplate())
	if err != nil {
		panic(fmt.Sprintf("vfs: default template is invalid: %v", err))
	}
	return fs
}

// lookup walks the tree from the root. The caller must hold mu.
func (fs *FileSystem) lookup(path string) (*node, bool) {
	current := fs.root
	for _, seg := range Segments(path) {
		next, ok := current.child(seg)
		if !ok {
			vfsLogger.Trace("Lookup of %q stopped at %q", path, seg)
			return nil, false
		}
		current = next
	}
	return current, true
}

// Get returns the entry at path. The boolean is false when any segment is
// missing or an intermediate segment is not a directory.
func (fs *FileSystem) Get(path string) (Entry, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	n, ok := fs.lookup(path)
	if !ok {
		return nil, false
	}
	return n.snapshot(), true
}

// List returns the children of the directory at path in insertion order.
// The boolean is false when path is missing or not a directory.
func (fs *FileSystem) List(path string) ([]Entry, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	n, ok := fs.lookup(path)
	if !ok || n.kind != KindDirectory {
		return nil, false
	}

	entries := make([]Entry, 0, len(n.order))
	for _, name := range n.order {
		entries = append(entries, n.children[name].snapshot())
	}
	return entries, true
}

// parentDir resolves the directory that will hold the final segment of
// path. The caller must hold mu.
func (fs *FileSystem) parentDir(op, path string) (*node, string, error) {
	parentPath, name := Split(path)
	if name == "" {
		return nil, "", newError(op, Root, ErrInvalidPath)
	}
	parent, ok := fs.lookup(parentPath)
	if !ok || parent.kind != KindDirectory {
		return nil, "", newError(op, Resolve(path, Root), ErrNotFound)
	}
	return parent, name, nil
}

// CreateFile creates a file holding content. An existing file or app of the
// same name is left untouched and the call succeeds without notifying.
func (fs *FileSystem) CreateFile(path, content string) error {
	fs.mu.Lock()
	parent, name, err := fs.parentDir(OpCreate, path)
	if err != nil {
		fs.mu.Unlock()
		return err
	}

	if existing, ok := parent.children[name]; ok {
		fs.mu.Unlock()
		switch existing.kind {
		case KindDirectory:
			return newError(OpCreate, name, ErrIsADirectory)
		case KindFile, KindApp:
			vfsLogger.Debug("CreateFile on existing %v %q is a no-op", existing.kind, path)
			return nil
		default:
			panic(fmt.Sprintf("vfs: unknown node kind %v", existing.kind))
		}
	}

	parent.attach(newFileNode(name, content))
	fs.mu.Unlock()

	vfsLogger.Debug("Created file %q (%d bytes)", path, len(content))
	fs.changed(OpCreate)
	return nil
}

// CreateDirectory creates an empty directory. Any existing entry of the same
// name is a collision.
func (fs *FileSystem) CreateDirectory(path string) error {
	fs.mu.Lock()
	parent, name, err := fs.parentDir(OpMkdir, path)
	if err != nil {
		fs.mu.Unlock()
		return err
	}

	if _, ok := parent.children[name]; ok {
		fs.mu.Unlock()
		return newError(OpMkdir, name, ErrAlreadyExists)
	}

	parent.attach(newDirNode(name))
	fs.mu.Unlock()

	vfsLogger.Debug("Created directory %q", path)
	fs.changed(OpMkdir)
	return nil
}

// WriteFile replaces the content of the file at path, creating it when
// missing.
func (fs *FileSystem) WriteFile(path, content string) error {
	fs.mu.Lock()
	parent, name, err := fs.parentDir(OpWrite, path)
	if err != nil {
		fs.mu.Unlock()
		return err
	}

	if existing, ok := parent.children[name]; ok {
		switch existing.kind {
		case KindDirectory:
			fs.mu.Unlock()
			return newError(OpWrite, name, ErrIsADirectory)
		case KindApp:
			fs.mu.Unlock()
			return newError(OpWrite, name, ErrAlreadyExists)
		case KindFile:
			existing.content = content
		default:
			fs.mu.Unlock()
			panic(fmt.Sprintf("vfs: unknown node kind %v", existing.kind))
		}
	} else {
		parent.attach(newFileNode(name, content))
	}
	fs.mu.Unlock()

	vfsLogger.Debug("Wrote file %q (%d bytes)", path, len(content))
	fs.changed(OpWrite)
	return nil
}

// Delete removes the entry at path together with all of its descendants.
func (fs *FileSystem) Delete(path string) error {
	fs.mu.Lock()
	parent, name, err := fs.parentDir(OpRemove, path)
	if err != nil {
		fs.mu.Unlock()
		return err
	}

	victim, ok := parent.children[name]
	if !ok {
		fs.mu.Unlock()
		return newError(OpRemove, Resolve(path, Root), ErrNotFound)
	}
	released := victim.count()
	parent.detach(name)
	fs.mu.Unlock()

	vfsLogger.Debug("Deleted %q (%d entries released)", path, released)
	fs.changed(OpRemove)
	return nil
}

// Rename moves the entry at oldPath to newPath. The destination must not
// exist and its parent must be a directory. A directory cannot be moved
// into its own subtree.
func (fs *FileSystem) Rename(oldPath, newPath string) error {
	src := Resolve(oldPath, Root)
	dst := Resolve(newPath, Root)

	fs.mu.Lock()
	srcParent, srcName, err := fs.parentDir(OpRename, src)
	if err != nil {
		fs.mu.Unlock()
		return err
	}
	moving, ok := srcParent.children[srcName]
	if !ok {
		fs.mu.Unlock()
		return newError(OpRename, src, ErrNotFound)
	}
	if moving.kind == KindDirectory && isSubpath(dst, src) {
		fs.mu.Unlock()
		return newError(OpRename, src, ErrInvalidPath)
	}

	dstParent, dstName, err := fs.parentDir(OpRename, dst)
	if err != nil {
		fs.mu.Unlock()
		return err
	}
	if _, taken := dstParent.children[dstName]; taken {
		fs.mu.Unlock()
		return newError(OpRename, dstName, ErrAlreadyExists)
	}

	srcParent.detach(srcName)
	moving.name = dstName
	dstParent.attach(moving)
	fs.mu.Unlock()

	vfsLogger.Debug("Moved %q to %q", src, dst)
	fs.changed(OpRename)
	return nil
}

// Snapshot returns a deep copy of the current tree as a template.
func (fs *FileSystem) Snapshot() *Template {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return toTemplate(fs.root)
}

// Subscribe registers s to be notified after every successful mutation. The
// returned function removes the registration; calling it more than once is
// harmless.
//
// Registrations form a set keyed on the subscriber's identity: subscribing a
// pointer (or other comparable value) that is already registered does not
// add a second registration and returns a function that removes the existing
// one. Function values have no identity, so every SubscriberFunc is
// registered separately.
func (fs *FileSystem) Subscribe(s Subscriber) (unsubscribe func()) {
	if s == nil {
		return func() {}
	}
	fs.subMu.Lock()
	id, found := fs.registration(s)
	if !found {
		fs.nextSubID++
		id = fs.nextSubID
		fs.subscribers = append(fs.subscribers, subscription{id: id, sub: s})
	}
	count := len(fs.subscribers)
	fs.subMu.Unlock()

	if found {
		vfsLogger.Trace("Subscriber %d already registered", id)
	} else {
		metrics.SetSubscribers(count)
		vfsLogger.Trace("Subscriber %d registered", id)
	}

	var once sync.Once
	return func() {
		once.Do(func() { fs.unsubscribe(id) })
	}
}

// SubscribeFunc registers fn as a distinct subscriber.
func (fs *FileSystem) SubscribeFunc(fn func()) (unsubscribe func()) {
	return fs.Subscribe(SubscriberFunc(fn))
}

// registration finds the id under which s is registered. Callers hold subMu.
func (fs *FileSystem) registration(s Subscriber) (uint64, bool) {
	if !reflect.TypeOf(s).Comparable() {
		return 0, false
	}
	for _, sub := range fs.subscribers {
		if sub.sub == s {
			return sub.id, true
		}
	}
	return 0, false
}

func (fs *FileSystem) unsubscribe(id uint64) {
	fs.subMu.Lock()
	for i, sub := range fs.subscribers {
		if sub.id == id {
			fs.subscribers = append(fs.subscribers[:i:i], fs.subscribers[i+1:]...)
			break
		}
	}
	count := len(fs.subscribers)
	fs.subMu.Unlock()

	metrics.SetSubscribers(count)
	vfsLogger.Trace("Subscriber %d removed", id)
}

// Subscribers returns the number of registered subscribers.
func (fs *FileSystem) Subscribers() int {
	fs.subMu.Lock()
	defer fs.subMu.Unlock()
	return len(fs.subscribers)
}

// changed notifies every subscriber, in registration order, once the write
// lock has been released.
func (fs *FileSystem) changed(op string) {
	metrics.RecordMutation(op)

	fs.subMu.Lock()
	subs := make([]subscription, len(fs.subscribers))
	copy(subs, fs.subscribers)
	fs.subMu.Unlock()

	vfsLogger.Trace("Notifying %d subscribers after %s", len(subs), op)
	for _, sub := range subs {
		sub.sub.Changed()
	}
}
