/*
Package display renders live copy progress: one bar per in-flight item plus a
run-wide aggregate bar.

	 workers ──events──▶ +-------------+
	                     | Coordinator |  single consumer,
	                     | (state)     |  owns all indicator state
	                     +------+------+
	                            |
	                     +------+------+
	                     |   Surface   |  render backend
	                     | (pterm/nop) |
	                     +-------------+

🎯 Purpose:
- Consume progress events from the single channel until it closes
- Cap the number of simultaneously rendered bars, evicting finished ones
- Keep one aggregate completed/total bar across the whole run

🔄 Flow:
1. NewItem: admit an indicator, evicting a finished one when at the cap
2. Advanced: move the item's bar; unknown ids are silently ignored
3. Done: mark finished, render the completion glyph, bump the aggregate
4. Channel close: finalize every remaining indicator and the aggregate

📝 Design Philosophy:
All mutable display state lives in the coordinator goroutine and never
escapes it, so no lock ever guards an indicator. The Surface interface keeps
terminal specifics (pterm) out of the state machine and lets tests observe
renders directly. The display cap is a soft real-estate budget: when nothing
has finished yet the cap is exceeded rather than blocking a worker - the real
concurrency throttle lives in the scheduler, not here.
*/
package display
