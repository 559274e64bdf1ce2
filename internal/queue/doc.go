// Package queue holds pending upload jobs and drives their lifecycle.
//
// The queue is in-memory and strictly sequential: at most one item runs at a
// time, StartNext pops the oldest waiting item, and a failure never halts the
// run — the caller records it and pulls the next item. There is no retry and
// no persistence; the queue lives exactly as long as the session that filled
// it.
//
// Status transitions are waiting→running→{completed|failed}, plus removal of
// waiting items via Cancel. Anything else is a programming error and is
// rejected with a typed sentinel so callers notice during development rather
// than shipping silent state corruption.
package queue
