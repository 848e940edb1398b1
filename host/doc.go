// Package host is the embedding boundary of chanavg.
//
// An [Engine] owns the execution resources of the filter (worker pool,
// accelerator choice, scratch buffers) and exposes the two host entry points:
// [Engine.AverageChannels] and [Engine.LogMessage]. Hosts that pass buffers
// across a process or language boundary hand over flat [chanavg.FilterConfig]
// values; [Packet] adds the action-chain fields used by [Engine.Process].
//
// The Engine never retains caller buffers after a call returns.
package host
