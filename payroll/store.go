/*
store.go - Employee directory contract

PURPOSE:
  The employee directory is the only entity with a lifecycle beyond a single
  computation. It is loaded as a consistent snapshot before the engine runs;
  edits replace the full list atomically and take effect only on subsequent
  computations. The engine never touches the store directly - callers load a
  snapshot and hand the slice to the Engine.

SEE ALSO:
  - store/sqlite: persistent implementation
  - payroll/store: in-memory implementation for tests
*/
package payroll

import "context"

// Directory persists the ordered employee list.
type Directory interface {
	// List returns the employees in their stored order.
	List(ctx context.Context) ([]Employee, error)

	// Replace atomically overwrites the full employee list. Readers see
	// either the old list or the new one, never a mix.
	Replace(ctx context.Context, employees []Employee) error
}
