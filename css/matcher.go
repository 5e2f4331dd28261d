package css

import (
	"strings"

	"github.com/chrisuehlinger/domkit/dom"
)

// matchContext carries per-query state through matching.
type matchContext struct {
	// scope is the element :scope refers to; nil means the document element.
	scope *dom.Element
}

// MatchElement tests if a selector matches an element.
func (s *CSSSelector) MatchElement(el *dom.Element) bool {
	return s.matches(el, matchContext{})
}

func (s *CSSSelector) matches(el *dom.Element, ctx matchContext) bool {
	for _, cs := range s.ComplexSelectors {
		if cs.matches(el, ctx, nil) {
			return true
		}
	}
	return false
}

// MatchElement tests if a complex selector matches an element.
func (cs *ComplexSelector) MatchElement(el *dom.Element) bool {
	return cs.matches(el, matchContext{}, nil)
}

// matches runs right to left from the subject compound. anchor is the :has()
// element a relative selector hangs off; nil outside :has().
func (cs *ComplexSelector) matches(el *dom.Element, ctx matchContext, anchor *dom.Element) bool {
	if len(cs.Compounds) == 0 {
		return false
	}
	return cs.matchAt(len(cs.Compounds)-1, el, ctx, anchor)
}

// matchAt reports whether compound i matches el and the compounds to its left
// match along the combinator chain. It backtracks across descendant and
// sibling combinators, so "div > p span" finds a farther <p> when the nearest
// one has the wrong parent.
func (cs *ComplexSelector) matchAt(i int, el *dom.Element, ctx matchContext, anchor *dom.Element) bool {
	if !cs.Compounds[i].matches(el, ctx) {
		return false
	}
	if i == 0 {
		if anchor == nil {
			return true
		}
		return related(cs.Leading, anchor, el)
	}

	switch cs.Compounds[i-1].Combinator {
	case CombinatorDescendant:
		for ancestor := el.ParentElement(); ancestor != nil; ancestor = ancestor.ParentElement() {
			if cs.matchAt(i-1, ancestor, ctx, anchor) {
				return true
			}
		}

	case CombinatorChild:
		if parent := el.ParentElement(); parent != nil {
			return cs.matchAt(i-1, parent, ctx, anchor)
		}

	case CombinatorNextSibling:
		if prev := el.PreviousElementSibling(); prev != nil {
			return cs.matchAt(i-1, prev, ctx, anchor)
		}

	case CombinatorSubsequentSibling:
		for prev := el.PreviousElementSibling(); prev != nil; prev = prev.PreviousElementSibling() {
			if cs.matchAt(i-1, prev, ctx, anchor) {
				return true
			}
		}
	}
	return false
}

// related reports whether el stands in relation c to anchor.
func related(c CombinatorType, anchor, el *dom.Element) bool {
	switch c {
	case CombinatorChild:
		return el.ParentElement() == anchor
	case CombinatorNextSibling:
		return el.PreviousElementSibling() == anchor
	case CombinatorSubsequentSibling:
		for prev := el.PreviousElementSibling(); prev != nil; prev = prev.PreviousElementSibling() {
			if prev == anchor {
				return true
			}
		}
		return false
	default:
		return anchor != el && anchor.AsNode().Contains(el.AsNode())
	}
}

// MatchElement tests if a compound selector matches an element.
func (c *CompoundSelector) MatchElement(el *dom.Element) bool {
	return c.matches(el, matchContext{})
}

func (c *CompoundSelector) matches(el *dom.Element, ctx matchContext) bool {
	// querySelector never returns pseudo-elements
	if c.PseudoElement != "" {
		return false
	}

	if c.TypeSelector != nil && !matchTypeSelector(c.TypeSelector, el) {
		return false
	}

	for _, id := range c.IDSelectors {
		if el.ID() != id {
			return false
		}
	}

	for _, class := range c.ClassSelectors {
		if !el.ClassList().Contains(class) {
			return false
		}
	}

	for _, attr := range c.AttributeMatchers {
		if !matchAttributeSelector(attr, el) {
			return false
		}
	}

	for _, pc := range c.PseudoClasses {
		if !matchPseudoClass(pc, el, ctx) {
			return false
		}
	}

	return true
}

func matchTypeSelector(ts *TypeSelector, el *dom.Element) bool {
	if ts.NoNamespace && el.NamespaceURI() != "" {
		return false
	}
	if ts.Name == "*" {
		return true
	}
	if el.NamespaceURI() == dom.HTMLNamespace {
		return strings.EqualFold(el.LocalName(), ts.Name)
	}
	return el.LocalName() == ts.Name
}

func matchAttributeSelector(attr *AttributeMatcher, el *dom.Element) bool {
	attrValue, ok := el.LookupAttribute(attr.Name)
	if !ok {
		return false
	}
	if attr.Operator == AttrExists {
		return true
	}

	matchValue := attr.Value
	if attr.CaseInsensitive {
		attrValue = strings.ToLower(attrValue)
		matchValue = strings.ToLower(matchValue)
	}

	switch attr.Operator {
	case AttrEquals:
		return attrValue == matchValue
	case AttrIncludes:
		if matchValue == "" || strings.ContainsAny(matchValue, " \t\n\r\f") {
			return false
		}
		for _, word := range strings.Fields(attrValue) {
			if word == matchValue {
				return true
			}
		}
		return false
	case AttrDashMatch:
		return attrValue == matchValue || strings.HasPrefix(attrValue, matchValue+"-")
	case AttrPrefix:
		return matchValue != "" && strings.HasPrefix(attrValue, matchValue)
	case AttrSuffix:
		return matchValue != "" && strings.HasSuffix(attrValue, matchValue)
	case AttrSubstring:
		return matchValue != "" && strings.Contains(attrValue, matchValue)
	}

	return false
}

func matchPseudoClass(pc *PseudoClassSelector, el *dom.Element, ctx matchContext) bool {
	switch pc.Name {
	case "root":
		parent := el.AsNode().ParentNode()
		return parent != nil && parent.NodeType() == dom.DocumentNode

	case "scope":
		if ctx.scope != nil {
			return el == ctx.scope
		}
		parent := el.AsNode().ParentNode()
		return parent != nil && parent.NodeType() == dom.DocumentNode

	case "empty":
		for child := el.AsNode().FirstChild(); child != nil; child = child.NextSibling() {
			switch child.NodeType() {
			case dom.ElementNode:
				return false
			case dom.TextNode:
				if child.NodeValue() != "" {
					return false
				}
			}
		}
		return true

	case "first-child":
		return el.PreviousElementSibling() == nil

	case "last-child":
		return el.NextElementSibling() == nil

	case "only-child":
		return el.PreviousElementSibling() == nil && el.NextElementSibling() == nil

	case "first-of-type":
		return countOfType(el, false) == 0

	case "last-of-type":
		return countOfType(el, true) == 0

	case "only-of-type":
		return countOfType(el, false) == 0 && countOfType(el, true) == 0

	case "nth-child", "nth-last-child", "nth-of-type", "nth-last-of-type":
		return matchNth(pc, el, ctx)

	case "not":
		return !pc.Selector.matches(el, ctx)

	case "is", "where", "matches":
		return pc.Selector.matches(el, ctx)

	case "has":
		return hasRelative(el, pc.Selector, ctx)

	case "enabled":
		return isFormControl(el) && !isDisabled(el)

	case "disabled":
		return isFormControl(el) && isDisabled(el)

	case "checked":
		return isChecked(el)

	case "indeterminate":
		v, _ := el.Property("indeterminate")
		b, _ := v.(bool)
		return b

	case "default":
		return el.LocalName() == "option" && el.HasAttribute("selected") ||
			el.LocalName() == "input" && el.HasAttribute("checked")

	case "required":
		return isFormElement(el) && el.HasAttribute("required")

	case "optional":
		return isFormElement(el) && !el.HasAttribute("required")

	case "read-only":
		return !isReadWrite(el)

	case "read-write":
		return isReadWrite(el)

	case "placeholder-shown":
		if !el.HasAttribute("placeholder") || (el.LocalName() != "input" && el.LocalName() != "textarea") {
			return false
		}
		v, _ := el.Property("value")
		s, _ := v.(string)
		return s == ""

	case "link", "any-link":
		return isLink(el)

	case "defined":
		return true

	case "lang":
		return matchLang(pc.Argument, el)

	case "dir":
		return matchDir(pc.Argument, el)
	}

	// visited, target and the user-action states (hover, focus, ...) never
	// match in a document nobody is interacting with.
	return false
}

// countOfType counts siblings before (or after) el that share its local name.
func countOfType(el *dom.Element, after bool) int {
	n := 0
	next := (*dom.Element).PreviousElementSibling
	if after {
		next = (*dom.Element).NextElementSibling
	}
	for sib := next(el); sib != nil; sib = next(sib) {
		if sib.LocalName() == el.LocalName() && sib.NamespaceURI() == el.NamespaceURI() {
			n++
		}
	}
	return n
}

// matchNth implements the :nth-* family, including the "of S" filter.
func matchNth(pc *PseudoClassSelector, el *dom.Element, ctx matchContext) bool {
	ofType := strings.HasSuffix(pc.Name, "-of-type")
	fromLast := strings.HasPrefix(pc.Name, "nth-last-")

	counts := func(sib *dom.Element) bool {
		if ofType {
			return sib.LocalName() == el.LocalName() && sib.NamespaceURI() == el.NamespaceURI()
		}
		if pc.Selector != nil {
			return pc.Selector.matches(sib, ctx)
		}
		return true
	}
	if !counts(el) {
		return false
	}

	next := (*dom.Element).PreviousElementSibling
	if fromLast {
		next = (*dom.Element).NextElementSibling
	}
	pos := 1
	for sib := next(el); sib != nil; sib = next(sib) {
		if counts(sib) {
			pos++
		}
	}
	return pc.Nth.Matches(pos)
}

// hasRelative reports whether some element relative to el matches one of the
// relative selectors in sel.
func hasRelative(el *dom.Element, sel *CSSSelector, ctx matchContext) bool {
	for _, cs := range sel.ComplexSelectors {
		found := false
		visit := func(cand *dom.Element) bool {
			if cs.matches(cand, ctx, el) {
				found = true
			}
			return !found
		}

		switch cs.Leading {
		case CombinatorNextSibling, CombinatorSubsequentSibling:
			for sib := el.NextElementSibling(); sib != nil && !found; sib = sib.NextElementSibling() {
				if visit(sib) {
					dom.WalkElements(sib.AsNode(), visit)
				}
			}
		default:
			dom.WalkElements(el.AsNode(), visit)
		}
		if found {
			return true
		}
	}
	return false
}

var formControls = map[string]bool{
	"button": true, "input": true, "select": true, "textarea": true,
	"option": true, "optgroup": true, "fieldset": true,
}

func isFormControl(el *dom.Element) bool {
	return el.NamespaceURI() == dom.HTMLNamespace && formControls[el.LocalName()]
}

func isDisabled(el *dom.Element) bool {
	if el.HasAttribute("disabled") {
		return true
	}
	// controls inside a disabled fieldset are disabled too
	for anc := el.ParentElement(); anc != nil; anc = anc.ParentElement() {
		if anc.LocalName() == "fieldset" && anc.HasAttribute("disabled") {
			return el.LocalName() != "legend"
		}
	}
	return false
}

func isChecked(el *dom.Element) bool {
	switch el.LocalName() {
	case "input":
		inputType := strings.ToLower(el.GetAttribute("type"))
		if inputType != "checkbox" && inputType != "radio" {
			return false
		}
		v, _ := el.Property("checked")
		checked, _ := v.(bool)
		return checked
	case "option":
		v, _ := el.Property("selected")
		selected, _ := v.(bool)
		return selected
	}
	return false
}

func isFormElement(el *dom.Element) bool {
	switch el.LocalName() {
	case "input", "select", "textarea":
		return true
	}
	return false
}

func isReadWrite(el *dom.Element) bool {
	switch el.LocalName() {
	case "input":
		switch strings.ToLower(el.GetAttribute("type")) {
		case "", "text", "password", "email", "url", "tel", "search", "number",
			"date", "datetime-local", "month", "time", "week":
			return !el.HasAttribute("readonly") && !isDisabled(el)
		}
		return false
	case "textarea":
		return !el.HasAttribute("readonly") && !isDisabled(el)
	}
	for cur := el; cur != nil; cur = cur.ParentElement() {
		if v, ok := cur.LookupAttribute("contenteditable"); ok {
			return !strings.EqualFold(v, "false")
		}
	}
	return false
}

func isLink(el *dom.Element) bool {
	switch el.LocalName() {
	case "a", "area":
		return el.HasAttribute("href")
	}
	return false
}

func matchLang(lang string, el *dom.Element) bool {
	lang = strings.ToLower(lang)
	for cur := el; cur != nil; cur = cur.ParentElement() {
		if v, ok := cur.LookupAttribute("lang"); ok {
			v = strings.ToLower(v)
			return v == lang || strings.HasPrefix(v, lang+"-")
		}
	}
	return false
}

func matchDir(dir string, el *dom.Element) bool {
	dir = strings.ToLower(dir)
	for cur := el; cur != nil; cur = cur.ParentElement() {
		if v, ok := cur.LookupAttribute("dir"); ok {
			if v = strings.ToLower(v); v == "ltr" || v == "rtl" {
				return v == dir
			}
		}
	}
	return dir == "ltr"
}
