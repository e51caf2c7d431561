// Package worker runs the per-service order loops.
//
// Each [Worker] owns one service: it submits an order, classifies the reply
// into an [Outcome], asks [Decide] for the next [Step], reports the
// transition, and sleeps for the step's cooldown before looping. Workers
// never stop on their own except when the service is unavailable; they end
// when their context is cancelled.
//
// [Pool] runs one worker per service of a platform.
package worker
