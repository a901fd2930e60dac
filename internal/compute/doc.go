// Package compute reports what the host offers to the force engines.
//
// The worker pool defaults to half the logical cores, which on most
// machines is one worker per physical core:
//
//	workers := compute.ClampWorkers(compute.DefaultWorkers(), n)
//	pool := dynamo.NewPool(workers)
//
// Requests are always clamped to [1, n]: a worker without a body to own
// would only add a barrier participant.
package compute
