package relaxng

// RNGNamespace is the RELAX NG namespace every schema element must belong
// to after Step 3's attribute/namespace normalisation.
const RNGNamespace = "http://relaxng.org/ns/structure/1.0"

// Element local names used throughout the simplifier.
const (
	elGrammar     = "grammar"
	elStart       = "start"
	elDefine      = "define"
	elRef         = "ref"
	elParentRef   = "parentRef"
	elExternalRef = "externalRef"
	elInclude     = "include"
	elDiv         = "div"
	elElement     = "element"
	elAttribute   = "attribute"
	elGroup       = "group"
	elInterleave  = "interleave"
	elChoice      = "choice"
	elOptional    = "optional"
	elZeroOrMore  = "zeroOrMore"
	elOneOrMore   = "oneOrMore"
	elMixed       = "mixed"
	elList        = "list"
	elData        = "data"
	elValue       = "value"
	elText        = "text"
	elEmpty       = "empty"
	elNotAllowed  = "notAllowed"
	elName        = "name"
	elAnyName     = "anyName"
	elNsName      = "nsName"
	elExcept      = "except"
	elParam       = "param"
)

// Attribute local names.
const (
	attrName            = "name"
	attrNS              = "ns"
	attrDatatypeLibrary = "datatypeLibrary"
	attrHref            = "href"
	attrCombine         = "combine"
	attrType            = "type"
)

var groupLikeNames = map[string]bool{
	elGroup: true, elInterleave: true, elChoice: true,
}
