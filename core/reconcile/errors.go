package reconcile

import "fmt"

// Stage names an apply stage.
type Stage string

const (
	StageCreate Stage = "create"
	StageUpdate Stage = "update"
	StageDelete Stage = "delete"
)

// Failure reports an apply that stopped part way. Writes that completed before
// the failure are kept; Partial holds their counts.
type Failure struct {
	Kind    string
	Stage   Stage
	Partial Result
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("reconcile %s: %s stage failed (created=%d updated=%d deleted=%d): %v",
		f.Kind, f.Stage, f.Partial.Created, f.Partial.Updated, f.Partial.Deleted, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
