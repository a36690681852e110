// Package rworker runs jobs with a bounded number in flight.
package rworker

import "sync"

type Pool struct {
	wg   sync.WaitGroup
	rate chan struct{}
	once sync.Once
	err  error
}

// New returns a pool running at most n jobs at once. n < 1 is treated as 1.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{rate: make(chan struct{}, n)}
}

// Go starts fn once a slot is free. Only the first error is kept.
func (p *Pool) Go(fn func() error) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.rate <- struct{}{}
		defer func() { <-p.rate }()
		if err := fn(); err != nil {
			p.once.Do(func() {
				p.err = err
			})
		}
	}()
}

// Wait blocks until every started job returns.
func (p *Pool) Wait() error {
	p.wg.Wait()
	return p.err
}
