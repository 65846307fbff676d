// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package progress defines the event protocol between copy workers and the
// display coordinator. Workers are the producers, the coordinator is the only
// consumer, and the Hub's channel is the sole synchronization point between
// them.
package progress

import "sync/atomic"

// 🔖 ID correlates all events for one copy item. IDs come from an atomic
// counter, never from timestamps, so they are unique for the run even under
// high concurrency.
type ID uint64

// 📨 Event is the tagged union carried by the Hub. For a given ID the
// producer emits exactly one NewItem, then zero or more Advanced with
// non-decreasing BytesSoFar, then exactly one Done.
type Event interface {
	ItemID() ID
}

// 🆕 NewItem announces a copy item before its first byte moves.
type NewItem struct {
	ID          ID
	DisplayPath string
	TotalSize   int64
}

// ➡️ Advanced reports cumulative bytes written so far for an item.
type Advanced struct {
	ID         ID
	BytesSoFar int64
}

// ✅ Done marks an item finished. Failed is set when the copy broke mid-stream
// or could not be set up; the item still settles in the display either way.
type Done struct {
	ID     ID
	Failed bool
}

func (e NewItem) ItemID() ID  { return e.ID }
func (e Advanced) ItemID() ID { return e.ID }
func (e Done) ItemID() ID     { return e.ID }

// 🚌 Hub owns the bounded event channel and the ID counter. Emit may block on
// backpressure but never fails; progress reporting must never abort a copy.
type Hub struct {
	events chan Event
	lastID atomic.Uint64
}

// 🏭 NewHub creates a hub with the given channel buffer size.
func NewHub(buffer int) *Hub {
	return &Hub{
		events: make(chan Event, buffer),
	}
}

// NextID allocates the next process-unique tracking ID.
func (h *Hub) NextID() ID {
	return ID(h.lastID.Add(1))
}

// Emit delivers an event to the consumer, preserving per-producer order.
func (h *Hub) Emit(ev Event) {
	h.events <- ev
}

// Events exposes the receive side for the single consumer.
func (h *Hub) Events() <-chan Event {
	return h.events
}

// Close signals the consumer to drain and exit. Call only after every
// producer has been joined.
func (h *Hub) Close() {
	close(h.events)
}
