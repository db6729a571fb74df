// Package bufferpool implements the frame table, replacement engine,
// pin/unpin protocol, and concurrency guard of a paged storage manager's
// buffer pool.
package bufferpool

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pnathan/storagepool/internal/pagefile"
	"github.com/pnathan/storagepool/internal/rc"
)

// DefaultPageSize matches spec.md §6.1's conventional PAGE_SIZE.
const DefaultPageSize = 4096

// PageHandle is a thin view returned from Pin. Data aliases the frame's
// backing bytes and is only valid until the matching Unpin; callers must
// not retain it past that call.
type PageHandle struct {
	PageNum int
	Data    []byte
}

// Option configures a BufferPool at Init time.
type Option func(*options)

type options struct {
	pageSize   int
	threadSafe bool
	logger     zerolog.Logger
}

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(o *options) { o.pageSize = n }
}

// WithThreadSafe controls whether Init installs a real mutex or a no-op
// guard. Defaults to true.
func WithThreadSafe(b bool) Option {
	return func(o *options) { o.threadSafe = b }
}

// WithLogger attaches a zerolog.Logger for operational tracing. Defaults
// to a disabled logger, so the core has no required dependency on a live
// logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// BufferPool is the buffer pool described in spec.md §3.1.
type BufferPool struct {
	initialized bool

	numPages int
	strategy Strategy
	replacer Replacer

	file     *pagefile.PageFile
	pageSize int

	frames  []Frame
	backing []byte
	free    *freeList

	tick       int64
	numReadIO  int
	numWriteIO int
	clockHand  int

	frameContents []int
	dirtyFlags    []bool
	fixCounts     []int

	g   guard
	log zerolog.Logger
}

// New returns an uninitialized pool. Call Init before any other method.
func New() *BufferPool {
	return &BufferPool{log: zerolog.Nop()}
}

// Init opens fileName (which must already exist; a missing file is
// reported as rc.ErrFileNotFound), allocates the frame array, the shared
// backing buffer, and the stat mirrors, and readies the pool for use.
func (bp *BufferPool) Init(fileName string, numPages int, strategy Strategy, opts ...Option) error {
	o := options{pageSize: DefaultPageSize, threadSafe: true, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	f, err := pagefile.Open(fileName, o.pageSize)
	if err != nil {
		return err
	}

	frames := make([]Frame, numPages)
	backing := make([]byte, numPages*o.pageSize)
	free := newFreeList(numPages)
	for i := range frames {
		frames[i] = Frame{
			pageNum: NoPage,
			data:    backing[i*o.pageSize : (i+1)*o.pageSize],
		}
		free.push(i)
	}

	bp.numPages = numPages
	bp.strategy = strategy
	bp.replacer = newReplacer(strategy)
	bp.file = f
	bp.pageSize = o.pageSize
	bp.frames = frames
	bp.backing = backing
	bp.free = free
	bp.tick = 0
	bp.numReadIO = 0
	bp.numWriteIO = 0
	bp.clockHand = 0
	bp.frameContents = make([]int, numPages)
	bp.dirtyFlags = make([]bool, numPages)
	bp.fixCounts = make([]int, numPages)
	for i := range bp.frameContents {
		bp.frameContents[i] = NoPage
	}
	bp.g = newGuard(o.threadSafe)
	bp.log = o.logger
	bp.initialized = true

	bp.log.Debug().Str("file", fileName).Int("numPages", numPages).Str("strategy", strategy.String()).Msg("bufferpool initialized")
	return nil
}

func (bp *BufferPool) checkInit() error {
	if !bp.initialized {
		return rc.ErrFileHandleNotInit
	}
	return nil
}

// Shutdown writes back every dirty resident frame -- including pinned
// ones, deliberately diverging from ForceFlushPool -- then closes the
// page file and releases the pool's owned memory.
func (bp *BufferPool) Shutdown() error {
	if err := bp.checkInit(); err != nil {
		return err
	}
	bp.g.Lock()
	defer bp.g.Unlock()

	for i := range bp.frames {
		f := &bp.frames[i]
		if f.resident() && f.dirty {
			if err := bp.writeBackIfDirty(i); err != nil {
				return err
			}
		}
	}

	if err := bp.file.Close(); err != nil {
		return err
	}

	bp.initialized = false
	bp.frames = nil
	bp.backing = nil
	bp.free = nil
	bp.frameContents = nil
	bp.dirtyFlags = nil
	bp.fixCounts = nil
	bp.log.Debug().Msg("bufferpool shut down")
	return nil
}

// ForceFlushPool writes back every frame that is resident, dirty, and
// unpinned. Pinned dirty frames are left untouched.
func (bp *BufferPool) ForceFlushPool() error {
	if err := bp.checkInit(); err != nil {
		return err
	}
	bp.g.Lock()
	defer bp.g.Unlock()

	for i := range bp.frames {
		f := &bp.frames[i]
		if f.resident() && f.dirty && f.fixCount == 0 {
			if err := bp.writeBackIfDirty(i); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeBackIfDirty writes frame idx's bytes to disk if it is dirty,
// clearing dirty and incrementing numWriteIO on success. Caller must
// hold bp.g.
func (bp *BufferPool) writeBackIfDirty(idx int) error {
	f := &bp.frames[idx]
	if !f.dirty {
		return nil
	}
	if err := bp.file.EnsureCapacity(f.pageNum + 1); err != nil {
		return err
	}
	if err := bp.file.WriteBlock(f.pageNum, f.data); err != nil {
		return err
	}
	bp.numWriteIO++
	f.dirty = false
	bp.syncStats(idx)
	bp.log.Debug().Int("page", f.pageNum).Int("frame", idx).Msg("wrote back dirty frame")
	return nil
}

// MarkDirty sets the dirty bit on handle's frame.
func (bp *BufferPool) MarkDirty(handle *PageHandle) error {
	if err := bp.checkInit(); err != nil {
		return err
	}
	bp.g.Lock()
	defer bp.g.Unlock()

	if handle == nil {
		return rc.ErrReadNonExistingPage
	}
	idx := bp.findByPage(handle.PageNum)
	if idx < 0 {
		return rc.ErrReadNonExistingPage
	}
	bp.frames[idx].dirty = true
	bp.syncStats(idx)
	return nil
}

// Unpin decrements the fix-count on handle's frame.
func (bp *BufferPool) Unpin(handle *PageHandle) error {
	if err := bp.checkInit(); err != nil {
		return err
	}
	bp.g.Lock()
	defer bp.g.Unlock()

	if handle == nil {
		return rc.ErrReadNonExistingPage
	}
	idx := bp.findByPage(handle.PageNum)
	if idx < 0 {
		return rc.ErrReadNonExistingPage
	}
	f := &bp.frames[idx]
	if f.fixCount <= 0 {
		return rc.ErrReadNonExistingPage
	}
	f.fixCount--
	bp.syncStats(idx)
	return nil
}

// ForcePage writes handle's frame to disk unconditionally. numWriteIO is
// only incremented, and dirty only cleared, when the frame was dirty at
// call time -- a clean frame is still written, silently, to identical
// on-disk bytes in the common case (spec.md §4.3, §9).
func (bp *BufferPool) ForcePage(handle *PageHandle) error {
	if err := bp.checkInit(); err != nil {
		return err
	}
	bp.g.Lock()
	defer bp.g.Unlock()

	if handle == nil {
		return rc.ErrReadNonExistingPage
	}
	idx := bp.findByPage(handle.PageNum)
	if idx < 0 {
		return rc.ErrReadNonExistingPage
	}
	f := &bp.frames[idx]

	if err := bp.file.EnsureCapacity(f.pageNum + 1); err != nil {
		return err
	}
	if err := bp.file.WriteBlock(f.pageNum, f.data); err != nil {
		return err
	}
	if f.dirty {
		bp.numWriteIO++
		f.dirty = false
		bp.syncStats(idx)
	}
	return nil
}

// Pin loads pageNum into a frame (if not already resident), bumps its
// fix-count, and populates handle with the frame's data.
func (bp *BufferPool) Pin(handle *PageHandle, pageNum int) error {
	if err := bp.checkInit(); err != nil {
		return err
	}
	if pageNum < 0 || handle == nil {
		return rc.ErrReadNonExistingPage
	}
	bp.g.Lock()
	defer bp.g.Unlock()

	if idx := bp.findByPage(pageNum); idx >= 0 {
		f := &bp.frames[idx]
		f.fixCount++
		bp.recordAccess(f)
		bp.syncStats(idx)
		handle.PageNum = pageNum
		handle.Data = f.data
		bp.log.Debug().Int("page", pageNum).Int("frame", idx).Msg("pin hit")
		return nil
	}

	target, fromFree := bp.free.pop()
	if !fromFree {
		victim, ok := bp.replacer.SelectVictim(bp)
		if !ok {
			bp.log.Warn().Int("page", pageNum).Msg("pin refused: all frames pinned")
			return rc.ErrWriteFailed
		}
		target = victim
		if err := bp.writeBackIfDirty(target); err != nil {
			return err
		}
	}

	if err := bp.loadPageIntoFrame(target, pageNum); err != nil {
		return err
	}

	f := &bp.frames[target]
	f.fixCount = 1
	bp.recordAccess(f)
	bp.syncStats(target)

	handle.PageNum = pageNum
	handle.Data = f.data
	bp.log.Debug().Int("page", pageNum).Int("frame", target).Msg("pin miss, loaded")
	return nil
}

// loadPageIntoFrame reads pageNum from disk into frame idx and resets
// its metadata to the freshly-loaded state. Caller must hold bp.g.
func (bp *BufferPool) loadPageIntoFrame(idx int, pageNum int) error {
	if err := bp.file.EnsureCapacity(pageNum + 1); err != nil {
		return err
	}
	f := &bp.frames[idx]
	if err := bp.file.ReadBlock(pageNum, f.data); err != nil {
		return err
	}
	bp.numReadIO++

	bp.tick++
	f.pageNum = pageNum
	f.fixCount = 0
	f.dirty = false
	f.loadTick = bp.tick
	f.accessTick = bp.tick
	f.ref = true
	f.kCount = 0
	f.kPos = 0
	f.hist = [2]int64{}
	return nil
}

// FrameContents returns a view of the page number resident in each
// frame, NoPage where empty. Valid until the next mutating call.
func (bp *BufferPool) FrameContents() []int { return bp.frameContents }

// DirtyFlags returns a view of each frame's dirty bit.
func (bp *BufferPool) DirtyFlags() []bool { return bp.dirtyFlags }

// FixCounts returns a view of each frame's fix-count.
func (bp *BufferPool) FixCounts() []int { return bp.fixCounts }

// NumReadIO returns the number of successful readBlock calls since Init.
func (bp *BufferPool) NumReadIO() int { return bp.numReadIO }

// NumWriteIO returns the number of successful dirty write-backs since Init.
func (bp *BufferPool) NumWriteIO() int { return bp.numWriteIO }

// String renders a short diagnostic summary, useful for log lines and
// test failure messages.
func (bp *BufferPool) String() string {
	return fmt.Sprintf("BufferPool{pages=%d strategy=%s reads=%d writes=%d}",
		bp.numPages, bp.strategy, bp.numReadIO, bp.numWriteIO)
}
