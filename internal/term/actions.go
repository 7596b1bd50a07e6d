package term

import (
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/rpctree/internal/action"
)

type stageArgs struct {
	ExitCode int32
}

var (
	stage1Action = action.Register[stageArgs, struct{}]("term.stage1", onStage1)
	stage2Action = action.Register[struct{}, struct{}]("term.stage2", onStage2)
	stage3Action = action.Register[struct{}, struct{}]("term.stage3", onStage3)
	stage4Action = action.Register[struct{}, struct{}]("term.stage4", onStage4)
	finishAction = action.Register[stageArgs, struct{}]("term.finish", onFinish)
)

func sendControl[Args any](p *Protocol, dest int, d *action.Descriptor[Args, struct{}], args Args) {
	payload, err := d.EncodeArgs(args)
	if err != nil {
		log.WithError(err).Error("term: encoding control message")
		return
	}
	if err := p.t.SendControl(dest, action.Envelope{ActionID: d.ID(), Kind: action.KindEvaluate, Payload: payload}); err != nil {
		log.WithError(err).WithField("dest", dest).Error("term: sending control message")
	}
}

func onStage1(args stageArgs) (struct{}, error) {
	p := active.Load()
	if p == nil {
		return struct{}{}, errorf("onStage1", "no active termination protocol installed")
	}
	beginStage1(p, args.ExitCode)
	return struct{}{}, nil
}

// beginStage1 runs on every process in the tree, including rank 0
// itself: it records the exit code, forwards stage 1 to its own
// children, and checks whether it can already ack stage 2 (true
// immediately for leaves).
func beginStage1(p *Protocol, exitCode int32) {
	atomic.StoreInt32(&p.exitCode, exitCode)
	for _, c := range p.children {
		sendControl(p, c, stage1Action, stageArgs{ExitCode: exitCode})
	}
	checkStage2(p)
}

func checkStage2(p *Protocol) {
	p.mu.Lock()
	allIn := p.stage2Acks == len(p.children)
	p.mu.Unlock()
	if !allIn {
		return
	}
	if p.rank == 0 {
		beginStage3(p)
		return
	}
	sendControl(p, p.parent, stage2Action, struct{}{})
}

func onStage2(struct{}) (struct{}, error) {
	p := active.Load()
	if p == nil {
		return struct{}{}, errorf("onStage2", "no active termination protocol installed")
	}
	p.mu.Lock()
	p.stage2Acks++
	p.mu.Unlock()
	checkStage2(p)
	return struct{}{}, nil
}

func onStage3(struct{}) (struct{}, error) {
	p := active.Load()
	if p == nil {
		return struct{}{}, errorf("onStage3", "no active termination protocol installed")
	}
	beginStage3(p)
	return struct{}{}, nil
}

// beginStage3 stops this process accepting new user sends, forwards
// stage 3 to its children, and checks whether it can already ack stage 4.
func beginStage3(p *Protocol) {
	p.mu.Lock()
	if p.stage3Begun {
		p.mu.Unlock()
		return
	}
	p.stage3Begun = true
	p.mu.Unlock()
	p.t.SetDraining(true)
	for _, c := range p.children {
		sendControl(p, c, stage3Action, struct{}{})
	}
	checkStage4(p)
}

// checkStage4 acks stage 4 upward (or, on rank 0, finishes the protocol)
// only once every child has acked AND this process's own transport has
// drained its pending promise table — the "drain-complete" condition
// spec §4.8 requires before the loop is allowed to exit. If the children
// are in but this process is still waiting on in-flight RPCs, it starts
// (or defers to an already-running) background poll rather than blocking
// the caller, which may be running inline from an action handler.
func checkStage4(p *Protocol) {
	p.mu.Lock()
	allIn := p.stage4Acks == len(p.children)
	alreadyPolling := p.stage4Poller
	p.mu.Unlock()
	if !allIn {
		return
	}
	if p.t.PendingCount() > 0 {
		if alreadyPolling {
			return
		}
		p.mu.Lock()
		p.stage4Poller = true
		p.mu.Unlock()
		go pollDrain(p)
		return
	}
	if p.rank == 0 {
		finishAll(p)
		return
	}
	sendControl(p, p.parent, stage4Action, struct{}{})
}

// pollDrain waits for the transport's pending promise table to empty,
// then re-enters checkStage4 to complete the ack this process was
// blocked on.
func pollDrain(p *Protocol) {
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()
	for range ticker.C {
		if p.t.PendingCount() == 0 {
			p.mu.Lock()
			p.stage4Poller = false
			p.mu.Unlock()
			checkStage4(p)
			return
		}
	}
}

func onStage4(struct{}) (struct{}, error) {
	p := active.Load()
	if p == nil {
		return struct{}{}, errorf("onStage4", "no active termination protocol installed")
	}
	p.mu.Lock()
	p.stage4Acks++
	p.mu.Unlock()
	checkStage4(p)
	return struct{}{}, nil
}

// finishAll runs only on rank 0, once stage 4 has completed: it
// broadcasts the agreed exit code down the tree and marks its own
// termination complete.
func finishAll(p *Protocol) {
	exitCode := atomic.LoadInt32(&p.exitCode)
	for _, c := range p.children {
		sendControl(p, c, finishAction, stageArgs{ExitCode: exitCode})
	}
	p.markDone(exitCode)
}

func onFinish(args stageArgs) (struct{}, error) {
	p := active.Load()
	if p == nil {
		return struct{}{}, errorf("onFinish", "no active termination protocol installed")
	}
	for _, c := range p.children {
		sendControl(p, c, finishAction, stageArgs{ExitCode: args.ExitCode})
	}
	p.markDone(args.ExitCode)
	return struct{}{}, nil
}
