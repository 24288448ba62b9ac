package aveplay

import (
	"context"
	"time"
)

// StartBackground runs the update and fetch cycle on its own goroutine
// every interval, until [Player.StopBackground]() or [Player.Close]() is
// called or ctx is done. Each cycle (advance clock, map to frame, decode,
// publish) runs with the player locked, so hosts read frames with
// [Player.CopyFrame]() and never see a half-written buffer.
//
// There's no way to interrupt a decode call in progress: stopping waits
// for the current cycle to finish.
func (p *Player) StartBackground(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		panic("non-positive background interval")
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.source == nil {
		return ErrNotOpen
	}
	if p.stopCh != nil {
		return ErrBackgroundRunning
	}

	p.stopCh = make(chan struct{})
	p.wg.Add(1)
	go p.backgroundLoop(ctx, p.stopCh, interval)
	return nil
}

// StopBackground stops background decoding and waits for the goroutine
// to exit. It's safe to call when nothing is running.
func (p *Player) StopBackground() {
	p.mutex.Lock()
	stopCh := p.stopCh
	p.stopCh = nil
	p.mutex.Unlock()

	if stopCh != nil {
		close(stopCh)
	}
	// release the mutex while waiting, the loop needs it to finish its cycle
	p.wg.Wait()
}

func (p *Player) backgroundLoop(ctx context.Context, stopCh chan struct{}, interval time.Duration) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// unless a stop or restart already replaced it, the session is free again
			p.mutex.Lock()
			if p.stopCh == stopCh {
				p.stopCh = nil
			}
			p.mutex.Unlock()
			return
		case <-stopCh:
			return
		case <-ticker.C:
			p.backgroundCycle()
		}
	}
}

func (p *Player) backgroundCycle() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.source == nil {
		return
	}
	p.noLockUpdate()
	if err := p.noLockFetch(); err != nil {
		p.log.Warn().Err(err).Msg("background fetch")
	}
}
