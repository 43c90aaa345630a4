package depot

import "go.uber.org/zap"

// warn logs a recoverable precondition failure and hands the error back to
// the caller. Nothing has been mutated when this is called.
func (s *storage) warn(op string, err error) error {
	s.core.log.Warn(err.Error(), zap.String("op", op), zap.Bool("view", s.view))
	return err
}

// fatal reports a failure on a call that must hand back a live reference.
// The default zap hook exits the process; a hook that returns (tests install
// WriteThenPanic) still never falls through to the caller.
func (s *storage) fatal(op string, err error) {
	s.core.log.Fatal(err.Error(), zap.String("op", op), zap.Bool("view", s.view))
	panic(err)
}
