package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectEditArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"quicklinks"},
			want: []string{"quicklinks"},
		},
		{
			name: "item id first token",
			in:   []string{"quicklinks", "42"},
			want: []string{"quicklinks", "menu", "--post", "42"},
		},
		{
			name: "item id after value flags",
			in:   []string{"quicklinks", "--dir", "./data", "--user", "ed", "2"},
			want: []string{"quicklinks", "--dir", "./data", "--user", "ed", "menu", "--post", "2"},
		},
		{
			name: "trailing flags kept",
			in:   []string{"quicklinks", "2", "--front"},
			want: []string{"quicklinks", "menu", "--post", "2", "--front"},
		},
		{
			name: "after double dash",
			in:   []string{"quicklinks", "--pretty", "--", "7"},
			want: []string{"quicklinks", "--pretty", "menu", "--post", "7"},
		},
		{
			name: "subcommand untouched",
			in:   []string{"quicklinks", "pins", "toggle", "7"},
			want: []string{"quicklinks", "pins", "toggle", "7"},
		},
		{
			name: "flag value that looks like an id",
			in:   []string{"quicklinks", "--user", "7", "menu"},
			want: []string{"quicklinks", "--user", "7", "menu"},
		},
		{
			name: "zero is not an id",
			in:   []string{"quicklinks", "0"},
			want: []string{"quicklinks", "0"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectEditArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectEditArgs(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
