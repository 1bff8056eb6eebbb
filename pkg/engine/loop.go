// Package engine manages the render/present frame loop on top of
// pkg/render's renderer: a double-buffered handoff between a render side
// (draws into a back buffer) and a present side (reads the front buffer),
// plus the command queue that carries resize and render-flag changes
// between them.
package engine

import (
	"sync"

	"github.com/taigrr/trophy/pkg/render"
)

// DrawFunc renders one frame using r, whose Target is the loop's current
// back buffer.
type DrawFunc func(r *render.Renderer)

// Loop owns a front/back Framebuffer pair and the Renderer that draws into
// the back buffer. It replaces the original engine's pair of volatile
// "ready" booleans with a mutex and two condition variables: one side
// blocks on the other having made progress rather than busy-waiting.
type Loop struct {
	mu          sync.Mutex
	backReady   *sync.Cond // signaled when a freshly-rendered frame is ready to swap in
	frontFree   *sync.Cond // signaled when the present side is done reading the front buffer

	front, back *render.Framebuffer
	Renderer    *render.Renderer
	Queue       *render.CommandQueue

	haveFrame  bool
	frontInUse bool
	closed     bool
}

// NewLoop creates a render/present loop targeting width x height, with the
// given initial render flags.
func NewLoop(width, height int, flags render.Flags) *Loop {
	l := &Loop{
		front: render.NewFramebuffer(width, height),
		back:  render.NewFramebuffer(width, height),
		Queue: render.NewCommandQueue(),
	}
	l.Renderer = render.NewRenderer(l.back, flags)
	l.backReady = sync.NewCond(&l.mu)
	l.frontFree = sync.NewCond(&l.mu)
	return l
}

// ApplyQueuedCommands drains the command queue, applying CmdResize /
// CmdSetFlag / CmdClearFlag / CmdToggleFlag to the loop's renderer and
// buffers. It must be called from the render side, between frames.
func (l *Loop) ApplyQueuedCommands() {
	for {
		cmd, ok := l.Queue.TryPop()
		if !ok {
			return
		}
		switch cmd {
		case render.CmdResize:
			w, okw := l.Queue.TryPop()
			h, okh := l.Queue.TryPop()
			if okw && okh {
				l.Resize(w, h)
			}
		case render.CmdSetFlag:
			if f, ok := l.Queue.TryPop(); ok {
				l.Renderer.Flags = l.Renderer.Flags.Set(render.Flags(f))
			}
		case render.CmdClearFlag:
			if f, ok := l.Queue.TryPop(); ok {
				l.Renderer.Flags = l.Renderer.Flags.Clear(render.Flags(f))
			}
		case render.CmdToggleFlag:
			if f, ok := l.Queue.TryPop(); ok {
				l.Renderer.Flags = l.Renderer.Flags.Toggle(render.Flags(f))
			}
		}
	}
}

// Resize grows both buffers and the renderer's depth buffer to w x h.
func (l *Loop) Resize(w, h int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.front.Resize(w, h)
	l.back.Resize(w, h)
	l.Renderer.Resize(w, h)
}

// RenderFrame applies any queued commands, then runs draw against the back
// buffer and swaps it in as the new front buffer. It waits only while
// Present is holding the front buffer; a finished frame that Present has
// not taken yet is replaced by the new one.
func (l *Loop) RenderFrame(draw DrawFunc) {
	l.mu.Lock()
	for l.frontInUse && !l.closed {
		l.frontFree.Wait()
	}
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	l.ApplyQueuedCommands()
	draw(l.Renderer)

	l.mu.Lock()
	l.front, l.back = l.back, l.front
	l.Renderer.Target = l.back
	l.haveFrame = true
	l.mu.Unlock()
	l.backReady.Broadcast()
}

// Present blocks until a frame is ready, hands the front buffer to fn, and
// then frees it for the next RenderFrame to reclaim.
func (l *Loop) Present(fn func(fb *render.Framebuffer)) {
	l.mu.Lock()
	for !l.haveFrame && !l.closed {
		l.backReady.Wait()
	}
	if l.closed {
		l.mu.Unlock()
		return
	}
	front := l.front
	l.frontInUse = true
	l.haveFrame = false
	l.mu.Unlock()

	fn(front)

	l.mu.Lock()
	l.frontInUse = false
	l.mu.Unlock()
	l.frontFree.Broadcast()
}

// Close unblocks any waiting RenderFrame/Present calls permanently.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.backReady.Broadcast()
	l.frontFree.Broadcast()
}
