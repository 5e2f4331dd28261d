package css

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/chrisuehlinger/domkit/dom"
	"github.com/chrisuehlinger/domkit/html"
)

const testPage = `<!DOCTYPE html>
<html lang="en"><head><title>t</title></head><body>
<div id="main" class="container">
<p class="intro first">One</p>
<p class="intro">Two</p>
<span>Three</span>
<p data-role="note" title="note-a b">Four</p>
</div>
<ul id="list"><li>1</li><li class="x">2</li><li>3</li><li class="x">4</li><li>5</li></ul>
<form>
<fieldset disabled><input id="f1"></fieldset>
<input id="c1" type="checkbox" checked>
<input id="t1" required>
<input id="r1" readonly>
<textarea id="ta"></textarea>
<select><option id="o1">a</option><option id="o2" selected>b</option></select>
</form>
<section id="s1"><img id="img1"></section>
<section id="s2"><div><img id="img2"></div></section>
<a id="link" href="/x">x</a><a id="nolink">y</a>
<div id="empty"></div><div id="comment"><!-- c --></div>
<div lang="fr-CA"><b id="fr">fr</b></div>
<div dir="rtl"><b id="rtl">r</b></div>
</body></html>`

func parseTestPage(t *testing.T) *dom.Document {
	t.Helper()
	doc, err := html.ParseString(testPage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func ids(els []*dom.Element) string {
	parts := make([]string, len(els))
	for i, el := range els {
		if id := el.ID(); id != "" {
			parts[i] = id
		} else {
			parts[i] = el.LocalName() + ":" + strings.TrimSpace(el.TextContent())
		}
	}
	return strings.Join(parts, ",")
}

func TestQuerySelectorAllMatching(t *testing.T) {
	doc := parseTestPage(t)

	tests := []struct {
		selector string
		want     string
	}{
		{"#main > p", "p:One,p:Two,p:Four"},
		{"p.intro.first", "p:One"},
		{"P.INTRO", ""},
		{"DIV#main > SPAN", "span:Three"},
		{"p + span", "span:Three"},
		{"p ~ p", "p:Two,p:Four"},
		{"[data-role=note]", "p:Four"},
		{"[title~=b]", "p:Four"},
		{"[title|=note]", "p:Four"},
		{"[title^=note]", "p:Four"},
		{"[title$=' b']", "p:Four"},
		{"[title*='e-a']", "p:Four"},
		{"[DATA-ROLE='NOTE' i]", "p:Four"},
		{"[data-role='NOTE']", ""},
		{"#list li:first-child", "li:1"},
		{"#list li:last-child", "li:5"},
		{"#list li:nth-child(2n+1)", "li:1,li:3,li:5"},
		{"#list li:nth-child(even)", "li:2,li:4"},
		{"#list li:nth-last-child(-n+2)", "li:4,li:5"},
		{"#list li:nth-child(2 of .x)", "li:4"},
		{"#list li:not(.x)", "li:1,li:3,li:5"},
		{"#list :is(li.x, li:first-child)", "li:1,li:2,li:4"},
		{"#main :first-of-type", "p:One,span:Three"},
		{"#main p:last-of-type", "p:Four"},
		{"#main span:only-of-type", "span:Three"},
		{"section:has(> img)", "s1"},
		{"section:has(img)", "s1,s2"},
		{"span:has(~ p)", "span:Three"},
		{"#list:root", ""},
		{"#empty:empty, #comment:empty", "empty,comment"},
		{"input:disabled", "f1"},
		{"input:enabled", "c1,t1,r1"},
		{":checked", "c1,o2"},
		{"input:required", "t1"},
		{"input:optional", "f1,c1,r1"},
		{":read-write", "t1,ta"},
		{"a:link", "link"},
		{"a:any-link", "link"},
		{"a:hover", ""},
		{"b:lang(fr)", "fr"},
		{"b:dir(rtl)", "rtl"},
		{"b:dir(ltr)", "fr"},
		{"p::before", ""},
		{"*|ul", "list"},
		{"ul#list, #main", "main,list"},
	}

	for _, tt := range tests {
		els, err := QuerySelectorAll(doc, tt.selector)
		if err != nil {
			t.Errorf("QuerySelectorAll(%q) error: %v", tt.selector, err)
			continue
		}
		if got := ids(els); got != tt.want {
			t.Errorf("QuerySelectorAll(%q) = %q, want %q", tt.selector, got, tt.want)
		}
	}
}

func TestQuerySelectorBacktracking(t *testing.T) {
	doc := dom.NewDocument()
	root := doc.MustCreateElement("html")
	doc.AsNode().AppendChild(root.AsNode())
	outer := doc.MustCreateElement("div")
	outer.SetClassName("a")
	mid := doc.MustCreateElement("div")
	inner := doc.MustCreateElement("div")
	inner.SetClassName("a")
	span := doc.MustCreateElement("span")
	root.AppendChild(outer.AsNode())
	outer.AppendChild(mid.AsNode())
	mid.AppendChild(inner.AsNode())
	inner.AppendChild(span.AsNode())

	// The nearest div ancestor (inner) has no .a parent; mid does.
	el, err := QuerySelector(doc, ".a > div span")
	if err != nil {
		t.Fatal(err)
	}
	if el != span {
		t.Errorf("Expected the span to match through backtracking")
	}
}

func TestQueryRoot(t *testing.T) {
	doc := parseTestPage(t)
	els, err := QuerySelectorAll(doc, ":root")
	if err != nil {
		t.Fatal(err)
	}
	if len(els) != 1 || els[0] != doc.DocumentElement() {
		t.Errorf("Expected :root to match only the document element, got %d matches", len(els))
	}
}

func TestQuerySelectorFirstMatch(t *testing.T) {
	doc := parseTestPage(t)

	el, err := QuerySelector(doc, "li.x")
	if err != nil {
		t.Fatal(err)
	}
	if el == nil || el.TextContent() != "2" {
		t.Errorf("Expected first li.x, got %v", el)
	}

	el, err = QuerySelector(doc, "table")
	if err != nil || el != nil {
		t.Errorf("Expected nil, nil for no match; got %v, %v", el, err)
	}
}

func TestQueryScopedToElement(t *testing.T) {
	doc := parseTestPage(t)
	list := doc.GetElementByID("list")

	els, err := QuerySelectorAll(list, ":scope > li.x")
	if err != nil {
		t.Fatal(err)
	}
	if len(els) != 2 {
		t.Errorf("Expected 2 matches, got %d", len(els))
	}

	// the root itself is never a result
	els, err = QuerySelectorAll(list, "ul")
	if err != nil {
		t.Fatal(err)
	}
	if len(els) != 0 {
		t.Errorf("Expected no matches, got %s", ids(els))
	}

	// ancestors outside the root still take part in matching
	els, err = QuerySelectorAll(list, "body li:first-child")
	if err != nil {
		t.Fatal(err)
	}
	if len(els) != 1 {
		t.Errorf("Expected 1 match, got %d", len(els))
	}
}

func TestQuerySyntaxError(t *testing.T) {
	doc := parseTestPage(t)

	_, err := QuerySelector(doc, "[")
	var domErr *dom.DOMError
	if !errors.As(err, &domErr) || domErr.Name != dom.SyntaxError {
		t.Fatalf("Expected SyntaxError, got %v", err)
	}
	if !strings.Contains(domErr.Message, "'['") {
		t.Errorf("Expected message to name the selector, got %q", domErr.Message)
	}

	if _, err := QuerySelectorAll(doc, "a >"); !errors.Is(err, dom.ErrSyntaxError) {
		t.Errorf("Expected SyntaxError, got %v", err)
	}
}

func TestQueryLiveStateAffectsMatching(t *testing.T) {
	doc := parseTestPage(t)
	c1 := doc.GetElementByID("c1")

	if err := c1.SetProperty("checked", false); err != nil {
		t.Fatal(err)
	}
	el, err := QuerySelector(doc, "input:checked")
	if err != nil {
		t.Fatal(err)
	}
	if el != nil {
		t.Errorf("Expected the unchecked box not to match :checked")
	}
}

func TestElementMatchesAndClosest(t *testing.T) {
	doc := parseTestPage(t)
	li := doc.GetElementByID("list").LastElementChild()

	ok, err := li.Matches("#list > li:last-child")
	if err != nil || !ok {
		t.Errorf("Matches = %v, %v; want true", ok, err)
	}
	if _, err := li.Matches("li["); !errors.Is(err, dom.ErrSyntaxError) {
		t.Errorf("Expected SyntaxError from Matches, got %v", err)
	}

	ul, err := li.Closest("ul")
	if err != nil || ul == nil || ul.ID() != "list" {
		t.Errorf("Closest(ul) = %v, %v", ul, err)
	}
	self, _ := li.Closest("li")
	if self != li {
		t.Errorf("Closest should include the element itself")
	}
	none, _ := li.Closest("table")
	if none != nil {
		t.Errorf("Expected nil for no ancestor match")
	}
}

func TestSelectorCache(t *testing.T) {
	c := NewSelectorCache(2)

	a1, err := c.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := c.Get("a")
	if a1 != a2 {
		t.Errorf("Expected the cached selector to be reused")
	}

	c.Get("b")
	c.Get("c")
	if c.Len() != 2 {
		t.Errorf("Expected cache bounded at 2, got %d", c.Len())
	}
	if a3, _ := c.Get("a"); a3 == a1 {
		t.Errorf("Expected a to have been evicted")
	}

	if _, err := c.Get("["); err == nil {
		t.Errorf("Expected parse error")
	}
	if c.Len() != 2 {
		t.Errorf("Parse errors must not be cached")
	}
}

func TestSelectorCacheConcurrent(t *testing.T) {
	c := NewSelectorCache(8)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sel := []string{"a", "b > c", "#x", ".y"}[i%4]
			if _, err := c.Get(sel); err != nil {
				t.Errorf("Get(%q): %v", sel, err)
			}
		}(i)
	}
	wg.Wait()
	if c.Len() != 4 {
		t.Errorf("Expected 4 cached selectors, got %d", c.Len())
	}
}
