package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalid, http.StatusBadRequest},
		{CodeConflict, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeUnsupportedType, http.StatusUnsupportedMediaType},
		{CodeTooLarge, http.StatusRequestEntityTooLarge},
		{CodeStore, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			require.Equal(t, tc.want, HTTPStatus(New(tc.code, "x")))
		})
	}
	require.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("plain")))
}

func TestCodeSurvivesWrapping(t *testing.T) {
	base := New(CodeNotFound, "project not found")
	wrapped := fmt.Errorf("delete project 7: %w", base)

	require.True(t, IsCode(wrapped, CodeNotFound))
	require.False(t, IsCode(wrapped, CodeForbidden))
	require.Equal(t, "project not found", Message(wrapped))
}

func TestStoreErrorHidesDriverMessage(t *testing.T) {
	driver := stderrors.New("pq: relation \"projects\" does not exist")
	err := Wrap(driver, CodeStore, "list projects failed")

	require.Equal(t, "list projects failed", Message(err))
	require.ErrorIs(t, err, driver)
	require.Contains(t, err.Error(), "does not exist")
	require.Equal(t, "internal error", Message(driver))
}
