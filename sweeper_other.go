//go:build !linux

package sweep

import "errors"

func (s *Sweeper) SetMark(mark uint) error {
	return errors.New("setting SO_MARK socket option is not supported on this platform")
}
