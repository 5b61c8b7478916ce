// Package commands turns argument vectors into operations on a keyspace of
// stream logs, in the shape of the Redis stream commands.
//
// Dispatcher.Do takes the command name followed by its arguments and returns
// a Reply: a string, an int64, nil, a Status, or a []any of those. Failures
// that the caller should see are *Error values whose text starts with "ERR ".
//
// Supported commands: PING, XADD, XRANGE, XREVRANGE, XTRIM, XLEN, XREAD,
// XINFO STREAM,
// DEL, EXISTS, TYPE and KEYS.
package commands
