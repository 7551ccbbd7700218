package signupsvc

import "sync"

// mailbox holds the latest value of an edit stream.
// Put never blocks; readers are woken through C and always see the newest value.
type mailbox struct {
	mu     sync.Mutex
	value  string
	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

func (m *mailbox) Put(value string) {
	m.mu.Lock()
	m.value = value
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *mailbox) Get() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.value
}

// C signals that a new value was put since the last receive.
func (m *mailbox) C() <-chan struct{} {
	return m.notify
}

// Drain discards a pending signal.
func (m *mailbox) Drain() {
	select {
	case <-m.notify:
	default:
	}
}
