// Package models defines the domain entities and persistence contracts for barcode sequence generation.
//
// Entities:
//   - [Product] : catalog entry whose code namespaces a sequence
//   - [Counter] : persisted last issued number and cumulative issued count for one product
//   - [Request] : transient generation input collected by a form or command
//   - [Batch] : ordered codes produced by one request
//
// Contracts:
//   - [CounterStore] : durable per-product counter persistence (sqlite, pebble, memory)
//   - [BatchStore] : optional history of generated batches
package models
