package errcode

import (
	"errors"
	"net/http"
	"testing"
)

func TestWrap(t *testing.T) {
	wrapped := ErrSeqAllocFailed.Wrap(errors.New("redis down"))
	if wrapped.Code != ErrSeqAllocFailed.Code {
		t.Errorf("wrap changed code: %d", wrapped.Code)
	}
	if wrapped == ErrSeqAllocFailed {
		t.Error("wrap should return a copy")
	}
	if wrapped.Msg == ErrSeqAllocFailed.Msg {
		t.Error("wrap should append cause to msg")
	}

	if got := ErrSendFailed.Wrap(nil); got != ErrSendFailed {
		t.Error("wrapping nil should return the original error")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code int
		want int
	}{
		{ErrSuccess.Code, http.StatusOK},
		{ErrInvalidParam.Code, http.StatusBadRequest},
		{ErrTokenMissing.Code, http.StatusUnauthorized},
		{ErrNotParticipant.Code, http.StatusForbidden},
		{ErrConvNotFound.Code, http.StatusNotFound},
		{ErrInternalServer.Code, http.StatusInternalServerError},
		{ErrSendFailed.Code, http.StatusInternalServerError},
	}

	for _, c := range cases {
		if got := HTTPStatus(c.code); got != c.want {
			t.Errorf("HTTPStatus(%d) = %d, want %d", c.code, got, c.want)
		}
	}
}
