package state

import "fmt"

// DataAccessError reports a failed read while loading a merchant's state.
type DataAccessError struct {
	MerchantID string
	Op         string
	Err        error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("load state for %s: %s: %v", e.MerchantID, e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}
