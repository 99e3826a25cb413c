package game

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRunner(t *testing.T) (*Runner, *testRig) {
	t.Helper()
	rig := newTestRig(t, ModeStandard)
	return NewRunner(rig.session, DefaultTickRate, nil), rig
}

func TestRunnerAppliesInputOnStep(t *testing.T) {
	r, rig := newTestRunner(t)
	d := rig.session.Table().DZone
	target := d.Center.Plus(Vec2{X: -15, Y: 5})

	if err := r.Send(Input{Kind: InputPointer, X: target.X, Y: target.Y}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := r.Send(Input{Kind: InputKey, Key: KeyTrail}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	snap := r.Step(tickDuration())

	if snap.Tick != 1 {
		t.Errorf("tick = %d, want 1", snap.Tick)
	}
	cue := snap.Balls[0]
	if cue.Role != "cue" || !vecApprox(cue.Position, target, 1e-9) {
		t.Errorf("cue ball = %+v, want at %+v", cue, target)
	}
	if !cue.NeonTrail {
		t.Error("trail key not applied")
	}
	if r.Latest().Tick != 1 {
		t.Error("Latest not updated")
	}
}

func TestRunnerModeInput(t *testing.T) {
	r, rig := newTestRunner(t)
	r.Send(Input{Kind: InputMode, Mode: ModeRandomBalls})
	snap := r.Step(tickDuration())
	if snap.Mode != ModeRandomBalls || rig.session.Mode() != ModeRandomBalls {
		t.Errorf("mode = %v", snap.Mode)
	}
	if !hasEvent(snap.Events, EventModeChange) {
		t.Error("mode change missing from the snapshot events")
	}
}

func TestInputApplyUnknown(t *testing.T) {
	rig := newTestRig(t, ModeStandard)
	if err := (Input{Kind: "dance"}).Apply(rig.session); err == nil {
		t.Error("unknown input accepted")
	}
	if err := (Input{Kind: InputMode, Mode: 8}).Apply(rig.session); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("bad mode error = %v", err)
	}
}

func TestRunnerSubscribersGetNewest(t *testing.T) {
	r, _ := newTestRunner(t)
	ch, stop := r.Subscribe()

	first := <-ch
	if first.Tick != 0 {
		t.Errorf("initial snapshot tick = %d", first.Tick)
	}
	for i := 0; i < 5; i++ {
		r.Step(tickDuration())
	}
	got := <-ch
	if got.Tick != 5 {
		t.Errorf("subscriber got tick %d, want the newest (5)", got.Tick)
	}

	stop()
	stop()
	if _, ok := <-ch; ok {
		t.Error("channel open after unsubscribe")
	}
}

func TestRunnerInboxFull(t *testing.T) {
	r, _ := newTestRunner(t)
	for i := 0; i < inboxSize; i++ {
		if err := r.Send(Input{Kind: InputForce, Up: true}); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}
	if err := r.Send(Input{Kind: InputForce}); !errors.Is(err, ErrInboxFull) {
		t.Errorf("overflow error = %v, want ErrInboxFull", err)
	}
	r.Step(tickDuration())
	if err := r.Send(Input{Kind: InputForce}); err != nil {
		t.Errorf("Send after drain: %v", err)
	}
}

func TestRunnerRunAndClose(t *testing.T) {
	r, _ := newTestRunner(t)
	ch, _ := r.Subscribe()
	<-ch

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case snap := <-ch:
		if snap.Tick == 0 {
			t.Error("runner published without ticking")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot from a running runner")
	}

	r.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v after Close", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
	if err := r.Send(Input{Kind: InputPointer}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Send after close = %v", err)
	}
	r.Close()
}

func TestRunnerStopsOnContext(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run ignored cancellation")
	}
	select {
	case <-r.Done():
	default:
		t.Error("Done not closed after Run returned")
	}
}

func TestSubscribeAfterClose(t *testing.T) {
	r, _ := newTestRunner(t)
	r.Step(tickDuration())
	r.Close()

	ch, stop := r.Subscribe()
	defer stop()
	if snap, ok := <-ch; !ok || snap.Tick != 1 {
		t.Errorf("first receive = %+v, %v; want the last snapshot", snap.Tick, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("channel from a closed runner left open")
	}
}
