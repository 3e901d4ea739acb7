package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Kind  string `json:"kind" validate:"required,oneof=a b"`
	Count *int   `json:"count,omitempty" validate:"required_if=Kind a"`
	Note  string `validate:"max=3"`
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name  string
		input sample
		want  string
	}{
		{"Valid", sample{Kind: "b"}, ""},
		{"Unknown kind", sample{Kind: "c"}, "kind: oneof"},
		{"Missing count", sample{Kind: "a"}, "count: required_if"},
		{"Untagged field", sample{Kind: "b", Note: "long"}, "Note: max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := GetValidator().Struct(tt.input)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, Describe(err))
		})
	}
}

func TestDescribe_OtherErrors(t *testing.T) {
	assert.Equal(t, "boom", Describe(errors.New("boom")))
}
