// Package id provides the composite stream identifier used by flostream logs.
//
// # Format
//
// An ID is a (milliseconds, sequence) pair rendered as "<ms>-<seq>". IDs
// compare on the millisecond part first and the sequence second. The 16-byte
// big-endian form returned by Bytes ([8 bytes ms][8 bytes seq]) preserves that
// order under byte-wise comparison, so it can be used directly as a storage key.
//
// # Parsing modes
//
// The same textual token means different things depending on where it is
// used, so callers pick a Mode explicitly:
//   - ModeGenerate: "*" or "<ms>[-<seq>]", missing seq is 0, result must be
//     strictly greater than the floor (the log's last ID).
//   - ModeRangeStart: "-" or "<ms>[-<seq>]", missing seq is 0.
//   - ModeRangeEnd: "+" or "<ms>[-<seq>]", missing seq is the largest sequence.
//
// Usage
//
//	next, err := id.Parse("*", id.ModeGenerate, last)
//	lo, _ := id.Parse("-", id.ModeRangeStart, id.Min)
//	hi, _ := id.Parse("1526919030474", id.ModeRangeEnd, id.Min)
//	s := next.String() // "1526919030474-0"
package id
