// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tile/lifecycle.go
// Summary: Content lifecycle management: how Run loops are started and stopped.

package tile

import (
	"log"
	"sync"
)

// ContentLifecycle governs how content instances are started and stopped.
// The default implementation runs content locally; tests substitute a no-op
// so fakes are driven directly.
type ContentLifecycle interface {
	Start(c Content)
	Stop(c Content)
}

// LocalContentLifecycle runs content in-process. Each Run loop gets its own
// goroutine and Stop is delegated to the content itself.
type LocalContentLifecycle struct {
	wg sync.WaitGroup
}

// Start launches the content's Run method asynchronously.
func (l *LocalContentLifecycle) Start(c Content) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := c.Run(); err != nil {
			log.Printf("content %s: run: %v", c.ID(), err)
		}
	}()
}

// Stop forwards the stop request to the content implementation.
func (l *LocalContentLifecycle) Stop(c Content) {
	c.Stop()
}

// Wait blocks until all started content has exited. Primarily useful for a
// clean shutdown and for tests.
func (l *LocalContentLifecycle) Wait() {
	l.wg.Wait()
}

// NoopContentLifecycle is used in tests where the run loop is stubbed out
// and should not be invoked.
type NoopContentLifecycle struct{}

func (NoopContentLifecycle) Start(c Content) {}
func (NoopContentLifecycle) Stop(c Content)  {}
