package relaxng

import "context"

// Simplify runs the ordered RELAX NG simplification pipeline (spec.md
// §4.G, steps 1-18) over root, mutating it in place, and returns the same
// *Element for convenience. The pipeline is idempotent on its own output
// (§8): calling Simplify again on an already-normalised tree is a no-op
// beyond re-verifying the invariants each step establishes.
func Simplify(ctx context.Context, root *Element, opts *Options) (*Element, error) {
	if opts == nil {
		opts = defaultOptions()
	}
	log := opts.Logger

	log.Debugf("simplify: step 1 (resolve inclusions)")
	root, err := step1ResolveInclusions(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	stripWhitespaceOnlyText(root)

	log.Debugf("simplify: step 3 (attribute normalisation)")
	if err := step3NormalizeAttributes(root); err != nil {
		return nil, err
	}

	log.Debugf("simplify: steps 4-5 (sugar expansion)")
	step45ExpandSugar(root)

	log.Debugf("simplify: steps 6-8 (flattening)")
	step68Flatten(root)

	log.Debugf("simplify: step 9 (div removal)")
	step9RemoveDiv(root)

	log.Debugf("simplify: steps 10-13 (name-class normalisation)")
	step1013NormalizeNameClasses(root)

	log.Debugf("simplify: step 14 (reachability)")
	if err := step14CheckReachability(root); err != nil {
		return nil, err
	}

	log.Debugf("simplify: step 15 (grammar merging)")
	merged, err := step15MergeGrammars(root, opts)
	if err != nil {
		return nil, err
	}
	root = merged

	log.Debugf("simplify: step 16 (one element per define)")
	step16OneElementPerDefine(root)

	log.Debugf("simplify: step 17 (notAllowed propagation)")
	step17PropagateNotAllowed(root)

	log.Debugf("simplify: step 18 (empty simplification)")
	step18SimplifyEmpty(root)

	return root, nil
}
