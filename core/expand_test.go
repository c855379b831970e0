package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleExpandPID() {
	fmt.Println(ExpandPID("echo $$", 1234))
	fmt.Println(ExpandPID("echo $$$$", 1234))

	// Output: echo 1234
	// echo 12341234
}

func TestExpandPID(t *testing.T) {
	cases := map[string]struct {
		line string
		want string
	}{
		"no-marker":     {"echo hello", "echo hello"},
		"single":        {"echo $$", "echo 42"},
		"double":        {"echo $$$$", "echo 4242"},
		"embedded":      {"mkdir dir$$", "mkdir dir42"},
		"multiple-args": {"cp $$.log $$.bak", "cp 42.log 42.bak"},
		"lone-dollar":   {"echo $", "echo $"},
		"triple-dollar": {"echo $$$", "echo 42$"},
		"empty":         {"", ""},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, ExpandPID(tc.line, 42))
		})
	}
}
