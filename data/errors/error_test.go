package errors

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_KindAndReason(t *testing.T) {
	err := LockTokenMismatch("/a.txt")

	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, err, ErrLocked)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, ErrForbidden, KindOf(err))
	assert.Equal(t, "vfs: file '/a.txt' is locked, lock token does not match", err.Error())
}

func TestError_Cause(t *testing.T) {
	err := Backend(io.ErrUnexpectedEOF, "sqlite", "unable to read '%s'", "key")

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, ErrServer)
	assert.Contains(t, err.Error(), "backend 'sqlite': unable to read 'key'")
}

func TestKindOf(t *testing.T) {
	assert.Nil(t, KindOf(nil))
	assert.Equal(t, ErrServer, KindOf(io.EOF))
	assert.Equal(t, ErrNotFound, KindOf(ItemNotFound(nil, "x")))
	assert.Equal(t, ErrConflict, KindOf(errors.Join(io.EOF, ItemExists("/", "x"))))
}

func TestErrors_Aggregate(t *testing.T) {
	errs := Errors{}
	assert.NoError(t, errs.Errors())

	errs.Add(nil)
	errs.Add(io.EOF)
	errs.Add(ItemNotFound(nil, "x"))

	assert.Equal(t, 2, errs.Len())
	assert.ErrorIs(t, errs.Errors(), io.EOF)
	assert.ErrorIs(t, errs.Errors(), ErrNotFound)

	errs.Clear()
	assert.NoError(t, errs.Errors())
}
