package draft

import "sync"

// SwitchMonitor es una implementación conmutable del Monitor: el estado se
// reporta desde afuera (el cliente notifica sus eventos online/offline).
type SwitchMonitor struct {
	mu     sync.RWMutex
	online bool
	subs   []chan bool
}

// NewSwitchMonitor crea un monitor con el estado inicial dado
func NewSwitchMonitor(online bool) *SwitchMonitor {
	return &SwitchMonitor{online: online}
}

// Online reporta el estado actual
func (m *SwitchMonitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Subscribe retorna un canal que recibe cada cambio de estado
func (m *SwitchMonitor) Subscribe() <-chan bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan bool, 1)
	m.subs = append(m.subs, ch)
	return ch
}

// SetOnline cambia el estado y notifica a los suscriptores si cambió
func (m *SwitchMonitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]chan bool, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- online:
		default:
			// Slow subscriber: drop rather than block the notifier.
		}
	}
}

var _ Monitor = (*SwitchMonitor)(nil)
