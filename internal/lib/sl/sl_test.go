package sl_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/user-service/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := sl.Err(nil)
		assert.Equal(t, "<nil>", attr.Value.String())
	})
}

func TestEmail_MasksLocalPart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "alice@example.com", want: "a***@example.com"},
		{in: "b@example.com", want: "b***@example.com"},
		{in: "not-an-email", want: "***"},
		{in: "@example.com", want: "***"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			attr := sl.Email(tt.in)
			assert.Equal(t, "email", attr.Key)
			assert.Equal(t, tt.want, attr.Value.String())
		})
	}
}
