package pipeline

import (
	"context"
	"sync"

	"streamer/internal/es"
)

// compile-time interface assertions.
var (
	_ Muxer   = (*FakeMuxer)(nil)
	_ Builder = (*FakeBuilder)(nil)
	_ Prober  = (*FakeProber)(nil)
)

// Prober mirrors transcode.Prober without importing that package;
// transcode.Prober is satisfied by anything with this method set.
type Prober interface {
	Probe(ctx context.Context, spec string) bool
}

// FakeBuilder builds FakeMuxer instances and records every spec it was
// asked to build, for assertions in chain/session tests.
type FakeBuilder struct {
	mu         sync.Mutex
	BuiltSpecs []string
	// RefuseFourcc, if set, makes Admit refuse streams with this fourcc.
	RefuseFourcc string
}

func (b *FakeBuilder) Build(_ context.Context, spec string) (Muxer, error) {
	b.mu.Lock()
	b.BuiltSpecs = append(b.BuiltSpecs, spec)
	b.mu.Unlock()
	return &FakeMuxer{refuseFourcc: b.RefuseFourcc}, nil
}

// FakeMuxer is an in-memory Muxer used by tests and cmd/castsim.
type FakeMuxer struct {
	mu           sync.Mutex
	refuseFourcc string
	subs         map[es.SubIdentity][]es.Block
	closed       bool
}

func (m *FakeMuxer) Admit(d es.Descriptor) (es.SubIdentity, bool, error) {
	if d.Fourcc == m.refuseFourcc && m.refuseFourcc != "" {
		return es.SubIdentity{}, false, nil
	}

	sub, err := es.NewSubIdentity()
	if err != nil {
		return es.SubIdentity{}, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs == nil {
		m.subs = make(map[es.SubIdentity][]es.Block)
	}
	m.subs[sub] = nil
	return sub, true, nil
}

func (m *FakeMuxer) Send(sub es.SubIdentity, block es.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub] = append(m.subs[sub], block)
	return nil
}

func (m *FakeMuxer) Flush(sub es.SubIdentity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub] = nil
	return nil
}

func (m *FakeMuxer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *FakeMuxer) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *FakeMuxer) Blocks(sub es.SubIdentity) []es.Block {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]es.Block(nil), m.subs[sub]...)
}

// FakeProber accepts or rejects probe specs according to a configurable
// allow-list, and records every spec it was asked to probe.
type FakeProber struct {
	mu     sync.Mutex
	Allow  func(spec string) bool
	Probed []string
}

func (p *FakeProber) Probe(_ context.Context, spec string) bool {
	p.mu.Lock()
	p.Probed = append(p.Probed, spec)
	p.mu.Unlock()
	if p.Allow == nil {
		return true
	}
	return p.Allow(spec)
}
