package handler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyWithinPrefix(t *testing.T) {
	cases := []struct {
		name   string
		key    string
		prefix string
		want   bool
	}{
		{"artifact under prefix", "output/j1/documentation/README.md", "output/j1", true},
		{"nested folder", "output/j1/lambda-functions/handler.py", "output/j1", true},
		{"sibling prefix", "output/j1extra/secret.txt", "output/j1", false},
		{"unrelated prefix", "input/j1/source.txt", "output/j1", false},
		{"prefix itself is not an object", "output/j1", "output/j1", false},
		{"empty key", "", "output/j1", false},
		{"empty prefix", "output/j1/file.txt", "", false},
		{"trailing slash on prefix", "output/j1/file.txt", "output/j1/", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, keyWithinPrefix(tc.key, tc.prefix))
		})
	}
}
