package forecaster

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyTimeDataset = errors.New("no timedataset or uninitialized")
	ErrNoOptionsInModel = errors.New("no options set in model")
)

// EngineError reports a failure of the forecast engine along with the operation that failed
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("forecast engine %s failed, %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func engineErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{Op: op, Err: err}
}
