package engine

import (
	"fmt"

	"github.com/skeinflow/skein/ir"
)

// QueueManager owns exactly one queue per channel declared in the network,
// dense-indexed by channel ID. A manager is built all-locked or all-unlocked;
// mixed variants within one manager are not supported. Seed values are
// enqueued at construction, in declaration order.
type QueueManager struct {
	network *ir.Network
	queues  []Queue
}

// NewQueueManager builds a manager with unlocked queues, for networks driven
// entirely from the scheduler's single thread of control.
func NewQueueManager(network *ir.Network) *QueueManager {
	return newQueueManager(network, false)
}

// NewLockedQueueManager builds a manager with mutex-guarded queues, for
// networks whose channels are also fed or drained by external goroutines.
func NewLockedQueueManager(network *ir.Network) *QueueManager {
	return newQueueManager(network, true)
}

func newQueueManager(network *ir.Network, locked bool) *QueueManager {
	channels := network.Channels()
	m := &QueueManager{network: network, queues: make([]Queue, len(channels))}
	for i, ch := range channels {
		if locked {
			m.queues[i] = newLockedQueue(ch)
		} else {
			m.queues[i] = newUnlockedQueue(ch)
		}
	}
	return m
}

// Queue returns the queue for the given channel. It panics on an unknown
// identity: the network is fixed and fully resolved before the manager is
// built, so a miss is a programming error.
func (m *QueueManager) Queue(id ir.ChannelID) Queue {
	if int(id) < 0 || int(id) >= len(m.queues) {
		panic(fmt.Sprintf("engine: unknown channel id %d", id))
	}
	return m.queues[id]
}

// QueueByName returns the queue for the named channel, panicking as Queue
// does when the name is unknown.
func (m *QueueManager) QueueByName(name string) Queue {
	ch := m.network.ChannelByName(name)
	if ch == nil {
		panic(fmt.Sprintf("engine: unknown channel %q", name))
	}
	return m.queues[ch.ID]
}

// Reset discards all queue contents and re-enqueues seed values, returning
// every channel to its initial configuration.
func (m *QueueManager) Reset() {
	for _, q := range m.queues {
		q.reset()
	}
}
