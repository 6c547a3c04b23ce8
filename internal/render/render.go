// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render implements contract text generation: substituting
// bracketed placeholder tokens in a template body with bound variable
// values. Rendering is a pure function; persistence of the result is the
// caller's responsibility.
package render

import (
	"regexp"
	"strings"
)

// Binding is a concrete (name, value) pair supplied when rendering a
// contract instance.
type Binding struct {
	Name  string
	Value string
}

// placeholderRE matches [identifier] tokens in a template body.
var placeholderRE = regexp.MustCompile(`\[([A-Za-z0-9_]+)\]`)

// Render substitutes placeholders in body with the bound values.
//
// Bindings are applied sequentially in the order supplied: each binding
// replaces every occurrence of the literal token "[name]" in the working
// text. A placeholder with no matching binding remains verbatim in the
// output. When two bindings share a name, the first consumes every
// occurrence and later duplicates find nothing to replace. Values are
// inserted literally, without escaping, so a value containing bracketed
// text can itself be matched by a later binding.
func Render(body string, bindings []Binding) string {
	out := body
	for _, b := range bindings {
		out = strings.ReplaceAll(out, "["+b.Name+"]", b.Value)
	}
	return out
}

// Placeholders returns the names of all placeholder tokens found in body,
// in order of first appearance, without duplicates. Used to suggest a
// variable schema when authoring templates.
func Placeholders(body string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRE.FindAllStringSubmatch(body, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Unbound returns the placeholder names in body that have no binding in
// the supplied set. The binder never fails on missing values; callers can
// use this to warn about placeholders that will survive rendering.
func Unbound(body string, bindings []Binding) []string {
	bound := make(map[string]bool, len(bindings))
	for _, b := range bindings {
		bound[b.Name] = true
	}
	var missing []string
	for _, name := range Placeholders(body) {
		if !bound[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
