// Package disclosure tracks which intro sections are expanded and renders
// them as collapsible cards.
//
// State is a plain set of open section indices. It starts empty, changes
// only through Toggle, ExpandAll and CollapseAll, and is not safe for
// concurrent use; the views package serializes access per view.
//
// Renderer produces sanitized HTML. Each card body carries data-open and
// data-collapsible markers; the embedded disclosure.js asset measures the
// body's natural height after every toggle and animates between zero and
// that height, so long and short sections both collapse smoothly.
package disclosure
