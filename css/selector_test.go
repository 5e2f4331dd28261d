package css

import (
	"errors"
	"testing"

	"github.com/chrisuehlinger/domkit/dom"
)

func TestParseSelectorValid(t *testing.T) {
	tests := []string{
		"div",
		".class",
		"#id",
		"*",
		"div.class#id",
		"div.class1.class2",
		"  div  ",
		"a, b ,c",
		"ul > li + li ~ li",
		"div p",
		"[href]",
		"[data-x='1' i]",
		"[lang|=en]",
		"a[href^=http][href$=\".pdf\"]",
		"*|div",
		"|div",
		"[*|href]",
		":root",
		"li:nth-child(2n+1)",
		"li:nth-child( -n + 3 )",
		"li:nth-last-of-type(odd)",
		"li:nth-child(even of .x)",
		"p:not(.a, .b)",
		":is(h1, h2) > span",
		"section:has(> img)",
		"div:has(+ p, ~ span)",
		"p::before",
		"p:after",
		":lang(en)",
		"a:hover",
		"input:disabled:checked",
	}

	for _, input := range tests {
		sel, err := ParseSelector(input)
		if err != nil {
			t.Errorf("ParseSelector(%q) error = %v", input, err)
			continue
		}
		if sel == nil || len(sel.ComplexSelectors) == 0 {
			t.Errorf("ParseSelector(%q) returned an empty selector", input)
		}
	}
}

func TestParseSelectorInvalid(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"[",
		"[href",
		"[href=]",
		"[href=a b]",
		"[href~x]",
		"[=x]",
		"div >",
		"> div",
		"a,",
		",a",
		"a,,b",
		".",
		"div.",
		"#1",
		"#",
		"div)",
		"div{",
		"div {",
		"a]",
		":",
		":unknown",
		":not(",
		":not()",
		":nth-child(foo)",
		":nth-child(2n+)",
		":nth-of-type(1 of p)",
		"::bogus",
		"p::before.x",
		"svg|rect",
		"div*",
		":hover()",
		"!",
	}

	for _, input := range tests {
		sel, err := ParseSelector(input)
		if err == nil {
			t.Errorf("ParseSelector(%q) = %+v, expected a SyntaxError", input, sel)
			continue
		}
		if !errors.Is(err, dom.ErrSyntaxError) {
			t.Errorf("ParseSelector(%q) error = %v, expected a SyntaxError", input, err)
		}
	}
}

func TestParseSelectorStructure(t *testing.T) {
	sel, err := ParseSelector("ul#nav > li.item:first-child a[href]")
	if err != nil {
		t.Fatalf("ParseSelector error: %v", err)
	}
	if len(sel.ComplexSelectors) != 1 {
		t.Fatalf("Expected 1 complex selector, got %d", len(sel.ComplexSelectors))
	}
	compounds := sel.ComplexSelectors[0].Compounds
	if len(compounds) != 3 {
		t.Fatalf("Expected 3 compounds, got %d", len(compounds))
	}

	if compounds[0].TypeSelector.Name != "ul" || compounds[0].IDSelectors[0] != "nav" {
		t.Errorf("Unexpected first compound %+v", compounds[0])
	}
	if compounds[0].Combinator != CombinatorChild {
		t.Errorf("Expected child combinator, got %v", compounds[0].Combinator)
	}
	if compounds[1].ClassSelectors[0] != "item" || compounds[1].PseudoClasses[0].Name != "first-child" {
		t.Errorf("Unexpected second compound %+v", compounds[1])
	}
	if compounds[1].Combinator != CombinatorDescendant {
		t.Errorf("Expected descendant combinator, got %v", compounds[1].Combinator)
	}
	if attr := compounds[2].AttributeMatchers[0]; attr.Name != "href" || attr.Operator != AttrExists {
		t.Errorf("Unexpected attribute matcher %+v", attr)
	}
}

func TestParseSelectorAttributes(t *testing.T) {
	tests := []struct {
		input  string
		name   string
		op     AttributeOperator
		value  string
		caseIn bool
	}{
		{"[a=b]", "a", AttrEquals, "b", false},
		{"[a~='b c']", "a", AttrIncludes, "b c", false},
		{"[a|=b]", "a", AttrDashMatch, "b", false},
		{"[a^=b]", "a", AttrPrefix, "b", false},
		{"[a$=b]", "a", AttrSuffix, "b", false},
		{"[a*=b]", "a", AttrSubstring, "b", false},
		{"[ A = \"b\" i ]", "a", AttrEquals, "b", true},
		{"[a=b s]", "a", AttrEquals, "b", false},
	}
	for _, tt := range tests {
		sel, err := ParseSelector(tt.input)
		if err != nil {
			t.Errorf("ParseSelector(%q) error = %v", tt.input, err)
			continue
		}
		attr := sel.ComplexSelectors[0].Compounds[0].AttributeMatchers[0]
		if attr.Name != tt.name || attr.Operator != tt.op || attr.Value != tt.value || attr.CaseInsensitive != tt.caseIn {
			t.Errorf("ParseSelector(%q) = %+v", tt.input, attr)
		}
	}
}

func TestParseAnPlusB(t *testing.T) {
	tests := []struct {
		input string
		want  NthExpr
		ok    bool
	}{
		{"odd", NthExpr{2, 1}, true},
		{"even", NthExpr{2, 0}, true},
		{"3", NthExpr{0, 3}, true},
		{"-2", NthExpr{0, -2}, true},
		{"n", NthExpr{1, 0}, true},
		{"-n+3", NthExpr{-1, 3}, true},
		{"2n+1", NthExpr{2, 1}, true},
		{"2n-1", NthExpr{2, -1}, true},
		{"+3n", NthExpr{3, 0}, true},
		{"", NthExpr{}, false},
		{"foo", NthExpr{}, false},
		{"2n1", NthExpr{}, false},
		{"2n+", NthExpr{}, false},
	}
	for _, tt := range tests {
		got, ok := parseAnPlusB(tt.input)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("parseAnPlusB(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNthExprMatches(t *testing.T) {
	tests := []struct {
		expr NthExpr
		pos  []int
	}{
		{NthExpr{2, 1}, []int{1, 3, 5}},
		{NthExpr{0, 2}, []int{2}},
		{NthExpr{-1, 3}, []int{1, 2, 3}},
		{NthExpr{3, 0}, []int{3, 6}},
	}
	for _, tt := range tests {
		var got []int
		for pos := 1; pos <= 6; pos++ {
			if tt.expr.Matches(pos) {
				got = append(got, pos)
			}
		}
		if len(got) != len(tt.pos) {
			t.Errorf("%+v matched %v, want %v", tt.expr, got, tt.pos)
			continue
		}
		for i := range got {
			if got[i] != tt.pos[i] {
				t.Errorf("%+v matched %v, want %v", tt.expr, got, tt.pos)
				break
			}
		}
	}
}
