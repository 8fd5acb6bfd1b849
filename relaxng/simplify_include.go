package relaxng

import (
	"context"
	"fmt"
)

// step1ResolveInclusions implements simplification Step 1: resolve every
// externalRef and include against the configured ResourceLoader, splicing
// referenced content in place, then compute each element's effective ns=/
// datatypeLibrary= by inheritance (the innermost ancestor attribute wins).
func step1ResolveInclusions(ctx context.Context, root *Element, opts *Options) (*Element, error) {
	if opts.CreateManifest && opts.manifest == nil {
		opts.manifest = newManifestRecorder(opts.ManifestHashAlgorithm)
	}
	if err := resolveInclusionsIn(ctx, root, opts.ResourceLoader, opts.manifest, map[string]bool{}); err != nil {
		return nil, err
	}
	computeInheritedContext(root)
	return root, nil
}

// resolveInclusionsIn walks el's subtree splicing in externalRef/include
// content; seen guards against an href including itself, directly or
// transitively. Sibling externalRef/include children at the same nesting
// level name independent documents, so their bytes are fetched
// concurrently through loadMany (spec.md §5: "callers may schedule many
// loads concurrently") before any of them is parsed or spliced in;
// parsing and tree splicing stay sequential since *Element is not safe
// for concurrent mutation.
func resolveInclusionsIn(ctx context.Context, el *Element, loader ResourceLoader, rec *manifestRecorder, seen map[string]bool) error {
	var incChildren []*Element
	for _, child := range el.ChildElements() {
		if child.Name.Namespace != RNGNamespace {
			continue
		}
		switch child.Name.Local {
		case elExternalRef, elInclude:
			incChildren = append(incChildren, child)
		default:
			if err := resolveInclusionsIn(ctx, child, loader, rec, seen); err != nil {
				return err
			}
		}
	}
	if len(incChildren) == 0 {
		return nil
	}

	resolvedURLs := make([]string, len(incChildren))
	for i, child := range incChildren {
		href, ok := child.Attr(attrHref)
		if !ok {
			return &SchemaValidationError{Msg: fmt.Sprintf("%s missing href", child.Name.Local), Location: child.Location}
		}
		resolved, err := resolveRef(child.Location, href)
		if err != nil {
			return fmt.Errorf("resolving href %q: %w", href, err)
		}
		resolved = stripFragment(resolved)
		if seen[resolved] {
			return &SchemaValidationError{Msg: fmt.Sprintf("circular inclusion of %q", resolved)}
		}
		resolvedURLs[i] = resolved
	}

	resources, err := loadMany(ctx, loader, resolvedURLs)
	if err != nil {
		return err
	}

	for i, child := range incChildren {
		resolved := resolvedURLs[i]
		if rec != nil {
			rec.record(resolved, resources[i].Body)
		}
		docRoot, err := ParseSchema(resources[i].Body, resolved)
		if err != nil {
			return err
		}
		nested := make(map[string]bool, len(seen)+1)
		for k := range seen {
			nested[k] = true
		}
		nested[resolved] = true
		if err := resolveInclusionsIn(ctx, docRoot, loader, rec, nested); err != nil {
			return err
		}

		switch child.Name.Local {
		case elExternalRef:
			spliceExternalRef(child, docRoot, resolved)
		case elInclude:
			merged, err := mergeIncludeGrammar(child, docRoot, resolved)
			if err != nil {
				return err
			}
			child.ReplaceWith(merged)
			if err := resolveInclusionsIn(ctx, merged, loader, rec, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// spliceExternalRef replaces an <externalRef href="..."/> with the
// (recursively resolved) root pattern of the referenced document. A
// referenced schema is a self-contained grammar scope; Step 15 assigns it
// its own grammar id when it renames defines, so no renaming happens here.
func spliceExternalRef(el, docRoot *Element, resolved string) {
	docRoot.Location = resolved
	if ns, ok := el.Attr(attrNS); ok {
		if _, has := docRoot.Attr(attrNS); !has {
			docRoot.SetAttr(attrNS, ns)
		}
	}
	el.ReplaceWith(docRoot)
}

// mergeIncludeGrammar builds the synthetic <grammar> an <include href="...">
// is replaced with: the included grammar's define/start elements, minus any
// overridden by the include element's own define/start children, plus those
// override children themselves. The synthetic grammar is left for Step 15
// to merge like any other nested grammar.
func mergeIncludeGrammar(el, docRoot *Element, resolved string) (*Element, error) {
	if docRoot.Name.Local != elGrammar {
		return nil, &SchemaValidationError{Msg: fmt.Sprintf("include target %q is not a grammar", resolved), Location: el.Location}
	}

	overrideNames := map[string]bool{}
	overrideStart := false
	for _, c := range el.ChildElements() {
		if c.Name.Local == elDefine {
			if name, ok := c.Attr(attrName); ok {
				overrideNames[name] = true
			}
		}
		if c.Name.Local == elStart {
			overrideStart = true
		}
	}

	merged := NewElement(RNGNamespace, elGrammar)
	merged.Location = el.Location
	for _, c := range docRoot.ChildElements() {
		if c.Name.Local == elDefine {
			if name, ok := c.Attr(attrName); ok && overrideNames[name] {
				continue
			}
		}
		if c.Name.Local == elStart && overrideStart {
			continue
		}
		merged.AppendChild(c)
	}
	for _, c := range el.ChildElements() {
		merged.AppendChild(c)
	}
	return merged, nil
}

// computeInheritedContext propagates ns=/datatypeLibrary= down the tree:
// an element without its own attribute inherits its nearest ancestor's
// effective value.
func computeInheritedContext(root *Element) {
	var walk func(e *Element, ns, dtLib string)
	walk = func(e *Element, ns, dtLib string) {
		if v, ok := e.Attr(attrNS); ok {
			ns = v
		}
		if v, ok := e.Attr(attrDatatypeLibrary); ok {
			dtLib = v
		}
		e.NS = ns
		e.DatatypeLibrary = dtLib
		for _, c := range e.ChildElements() {
			walk(c, ns, dtLib)
		}
	}
	walk(root, "", "")
}
