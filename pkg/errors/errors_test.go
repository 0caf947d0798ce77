package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New(CodeInvalidSMILES, "unbalanced ring closure")
	assert.Equal(t, "[MOL_001] unbalanced ring closure", e.Error())

	e = e.WithDetail("input row 17")
	assert.Equal(t, "[MOL_001] unbalanced ring closure: input row 17", e.Error())
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeMatrixIO, "should be nil"))

	cause := stderrors.New("disk full")
	e := Wrap(cause, CodeMatrixIO, "persist failed")
	assert.Equal(t, CodeMatrixIO, e.Code)
	assert.ErrorIs(t, e, cause)
}

func TestWrap_PreservesCodeOnUnknown(t *testing.T) {
	inner := New(CodeEmptyClass, "no actives left")
	e := Wrap(inner, CodeUnknown, "while splitting")
	assert.Equal(t, CodeEmptyClass, e.Code)
}

func TestIsCode(t *testing.T) {
	inner := New(CodeFractionSum, "0.7 + 0.6 > 1")
	outer := Wrap(inner, CodeValidation, "split options rejected")

	assert.True(t, IsCode(outer, CodeFractionSum))
	assert.True(t, IsCode(outer, CodeValidation))
	assert.False(t, IsCode(outer, CodeEmptyGroup))
	assert.False(t, IsCode(nil, CodeFractionSum))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeEmptyGroup, GetCode(New(CodeEmptyGroup, "zero active-train ligands")))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "MOL", ModuleForCode(CodeInvalidSMILES))
	assert.Equal(t, "BIAS", ModuleForCode(CodeEmptyGroup))
	assert.Equal(t, "OK", ModuleForCode(CodeOK))
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "distance quartet contains an empty group", DefaultMessageForCode(CodeEmptyGroup))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("NOPE_999")))
}
