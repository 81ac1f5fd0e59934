package cli

import (
	"reflect"
	"testing"
)

func TestSplitQuoted(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{`A subj body`, []string{"A", "subj", "body"}},
		{`separate "these are together" separate`, []string{"separate", "these are together", "separate"}},
		{`A "two words" "body text"`, []string{"A", "two words", "body text"}},
		{`A "" x`, []string{"A", "", "x"}},
		{`   `, nil},
		{`S`, []string{"S"}},
		{`V 12`, []string{"V", "12"}},
	}
	for _, c := range cases {
		got := SplitQuoted(c.in)
		if len(got) == 0 && len(c.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("SplitQuoted(%q) = %#v; want %#v", c.in, got, c.want)
		}
	}
}
