package engine

import (
	"image/color"
	"testing"
	"time"

	"github.com/taigrr/trophy/pkg/render"
)

func TestRenderFramePresentHandoff(t *testing.T) {
	l := NewLoop(4, 4, 0)

	want := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	l.RenderFrame(func(r *render.Renderer) {
		r.Target.Clear(want)
	})

	got := make(chan color.RGBA, 1)
	l.Present(func(fb *render.Framebuffer) {
		got <- fb.GetPixel(0, 0)
	})

	select {
	case c := <-got:
		if c != want {
			t.Errorf("Present saw %+v, want %+v", c, want)
		}
	case <-time.After(time.Second):
		t.Fatal("Present never ran fn")
	}
}

func TestApplyQueuedCommandsResizeAndFlags(t *testing.T) {
	l := NewLoop(4, 4, 0)
	l.Queue.Push(render.CmdResize, 8, 6)
	l.Queue.Push(render.CmdSetFlag, int(render.Wireframe))

	l.ApplyQueuedCommands()

	if l.Renderer.Flags&render.Wireframe == 0 {
		t.Error("expected Wireframe flag to be set after CmdSetFlag")
	}

	l.RenderFrame(func(r *render.Renderer) {
		if r.Target.Width != 8 || r.Target.Height != 6 {
			t.Errorf("expected resized target 8x6, got %dx%d", r.Target.Width, r.Target.Height)
		}
	})
}

func TestCloseUnblocksPendingPresent(t *testing.T) {
	l := NewLoop(2, 2, 0)

	done := make(chan struct{})
	go func() {
		l.Present(func(fb *render.Framebuffer) {})
		close(done)
	}()

	// Give Present a moment to start blocking, then close the loop; it must
	// return rather than hang forever with no frame ever rendered.
	time.Sleep(10 * time.Millisecond)
	l.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Present did not unblock after Close")
	}
}

func TestRenderFrameBlocksWhilePresentHoldsFront(t *testing.T) {
	l := NewLoop(2, 2, 0)

	// First frame so Present has something to read.
	l.RenderFrame(func(r *render.Renderer) {})

	releasePresent := make(chan struct{})
	presentStarted := make(chan struct{})
	go func() {
		l.Present(func(fb *render.Framebuffer) {
			close(presentStarted)
			<-releasePresent
		})
	}()

	select {
	case <-presentStarted:
	case <-time.After(time.Second):
		t.Fatal("Present never started reading the front buffer")
	}

	secondDone := make(chan struct{})
	go func() {
		// While Present is still holding the front buffer, this RenderFrame
		// call must block rather than swap in a second frame underneath it.
		l.RenderFrame(func(r *render.Renderer) {})
		close(secondDone)
	}()

	select {
	case <-secondDone:
		t.Fatal("RenderFrame completed while Present still held the front buffer")
	case <-time.After(50 * time.Millisecond):
	}

	close(releasePresent)

	select {
	case <-secondDone:
	case <-time.After(time.Second):
		t.Fatal("RenderFrame never unblocked after Present released the front buffer")
	}
}
