// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService is a suture.Service that fails a fixed number of times and
// then runs until its context is canceled.
type mockService struct {
	name       string
	startCount atomic.Int32
	fails      atomic.Int32
}

func newMockService(name string, fails int32) *mockService {
	m := &mockService{name: name}
	m.fails.Store(fails)
	return m
}

func (m *mockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)
	if m.fails.Add(-1) >= 0 {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string {
	return m.name
}
