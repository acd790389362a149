// Package ingest reads and writes transaction datasets in CSV form.
//
// The reader accepts a header row and normalizes the column names used by the
// common exports (symbol or crypto_symbol, price or amount_usd, volume or
// fee_usd, sender_wallet, receiver_wallet, status). Columns it does not know
// are kept as passthrough fields. Datasets may be compressed with gzip, zstd
// or lz4; Decompress picks the decoder from the file name.
package ingest
