package mobile

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		oper string
	}{
		{"77123456", true, "TashiCell"},
		{"17123456", true, "B-Mobile"},
		{" 77123456 ", true, "TashiCell"},
		{"123456", false, ""},
		{"7712345", false, ""},
		{"771234567", false, ""},
		{"18123456", false, ""},
		{"77a23456", false, ""},
		{"", false, ""},
	}
	for _, c := range cases {
		n, err := Parse(c.in)
		if c.ok != (err == nil) {
			t.Fatalf("Parse(%q) err=%v want ok=%v", c.in, err, c.ok)
		}
		if c.ok && n.Operator() != c.oper {
			t.Fatalf("Parse(%q).Operator()=%s want %s", c.in, n.Operator(), c.oper)
		}
	}
}
