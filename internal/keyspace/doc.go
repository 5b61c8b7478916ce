// Package keyspace maps key names to stream logs.
//
// Keys are spread over a power-of-two number of shards by xxhash; each shard
// has its own lock so unrelated keys do not contend. A StoreFactory decides
// which ordered container backs a newly created log.
package keyspace
