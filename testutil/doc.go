// Package testutil provides testing utilities for ledgerdb.
//
// This package is intended for tests, benchmarks and the dataset generator.
// It provides helpers for generating random transaction records and an
// oracle that tracks the expected index contents of a record stream.
//
// # Random Records
//
//	rng := testutil.NewRNG(seed)
//	gen := testutil.NewGenerator(rng, testutil.GeneratorConfig{Wallets: 50})
//	fields := gen.Next()
//
// # Index Oracle
//
//	o := testutil.NewOracle()
//	o.Insert(id, fields)
//	want := o.ByToken("BTC")
package testutil
