// Package store keeps the latest status of every order worker.
//
// It implements a publish-subscribe pattern so the terminal printer and the
// status API can follow workers in real time.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [WorkerStatus]: Storage representation of a worker's status
//
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers miss updates rather than block the workers).
package store
