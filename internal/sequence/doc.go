// Package sequence issues per-product sequential codes and keeps their counters durable.
//
// A [Generator] owns the product catalog and the transient result of the last batch.
// [Generator.Generate] validates a [models.Request], reads the product's [models.Counter],
// formats one code per number with a [Format], and writes the advanced counter back in a
// single [models.CounterStore.Set] call. Any failure leaves the store, the catalog and the
// transient batch untouched.
//
// Code layout is configuration: [FullFields] reproduces
//
//	company-product-NN-count-lot-date-quantity
//
// and [MinimalFields] reproduces
//
//	product-NN
//
// The number is zero padded to [Format.PadWidth] digits. Numbers that outgrow the width are
// written in full and logged, since lexical order stops matching numeric order from there on.
package sequence
