package kaimono

import "database/sql"

// Op is a unit of work that, given a live transaction, produces a value or
// fails. Building an Op performs no I/O; nothing runs until the composed op
// is handed to Run, which executes the whole chain inside one transaction.
// Composition short-circuits: once a step fails, later steps never execute
// and the transaction rolls back.
type Op[T any] func(tx *sql.Tx) (T, error)

// Pure lifts a value into an Op that touches nothing.
func Pure[T any](v T) Op[T] {
	return func(*sql.Tx) (T, error) { return v, nil }
}

// Bind sequences two ops: run a, feed its result to f, run the op f builds.
// If a fails, f is never called and the combined op fails with a's error.
func Bind[A, B any](a Op[A], f func(A) Op[B]) Op[B] {
	return func(tx *sql.Tx) (B, error) {
		v, err := a(tx)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(v)(tx)
	}
}

// Then sequences b after a, discarding a's result.
func Then[A, B any](a Op[A], b Op[B]) Op[B] {
	return Bind(a, func(A) Op[B] { return b })
}

// MapOp transforms an op's result without further database work.
func MapOp[A, B any](a Op[A], f func(A) (B, error)) Op[B] {
	return func(tx *sql.Tx) (B, error) {
		v, err := a(tx)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(v)
	}
}

// All sequences a slice of ops, collecting every result. The first failure
// aborts the remainder.
func All[T any](ops []Op[T]) Op[[]T] {
	return func(tx *sql.Tx) ([]T, error) {
		out := make([]T, 0, len(ops))
		for _, op := range ops {
			v, err := op(tx)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
}
