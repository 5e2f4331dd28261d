// Package domutil is a small set of conveniences over the dom package:
// waiting for a document to finish parsing, building an element from an
// option bag in one call, and querying with typed results.
//
// Every helper takes an optional document or root; nil means the package
// default set with SetDefault.
//
//	domutil.SetDefault(doc)
//	<-domutil.Ready(nil)
//	btn, _ := domutil.CreateElement("button", domutil.Options{
//		"class": []string{"primary", "wide"},
//		"text":  "Save",
//		"type":  "submit",
//	}, nil)
//	links, _ := domutil.QsaAs[dom.AnchorElement]("nav a[href]", nil)
package domutil
