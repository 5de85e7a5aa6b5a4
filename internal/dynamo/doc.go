// Package dynamo provides the shared primitives of the pendulum simulator.
//
// The package defines the small vocabulary every other package speaks:
//
//   - [Vec2]: a point in the simulation plane
//   - [Sampler]: the injected source of uniform random values used by resets
//   - [Configurable]: runtime parameter editing through named handles
//   - [ParallelFor]: chunked data-parallel map with an implicit join
//
// # Example
//
//	src := dynamo.NewSampler(42)
//	batch.Reset(src)
//	dynamo.ParallelFor(batch.Len(), 8, func(start, end int) { ... })
//
// # Thread Safety
//
// A [Sampler] returned by [NewSampler] is NOT safe for concurrent use.
// Resets draw from it on a single goroutine.
package dynamo
