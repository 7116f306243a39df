// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// ErrRevert is a categorical precondition failure of a contract operation.
// Two revert errors match under errors.Is when they share the same kind,
// regardless of the attached detail message.
type ErrRevert struct {
	kind    string
	message string
}

func New(kind string) *ErrRevert {
	return &ErrRevert{
		kind: kind,
	}
}

func (e *ErrRevert) Error() string {
	if e.message == "" {
		return e.kind
	}
	return e.kind + ": " + e.message
}

// Kind returns the category name.
func (e *ErrRevert) Kind() string {
	return e.kind
}

// Is implements errors.Is.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	return ok && t.kind == e.kind
}

// Withf returns a copy of e carrying a formatted detail message.
func (e *ErrRevert) Withf(format string, args ...any) *ErrRevert {
	return &ErrRevert{
		kind:    e.kind,
		message: fmt.Sprintf(format, args...),
	}
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the category of a revert error, or empty string if err is not one.
func KindOf(err error) string {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return ""
}
