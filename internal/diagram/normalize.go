package diagram

import (
	"fmt"
	"strings"
	"unicode"
)

// Element is a single normalized structural item. Key drives comparison;
// Label is the human-readable form taken from the first occurrence.
type Element struct {
	Category Category
	Key      string
	Label    string
}

// Set holds the elements of one category keyed by normalized key.
type Set map[string]Element

// Options tune how documents are reduced to element keys.
type Options struct {
	// MatchMultiplicity includes relationship multiplicities in the key.
	MatchMultiplicity bool
}

// Description is the set view of a Document, one Set per category.
// It is read-only once built.
type Description struct {
	sets map[Category]Set
}

// Describe reduces doc to normalized element sets. Entries that normalize to
// the same key collapse into one element.
func Describe(doc *Document, opts Options) Description {
	d := Description{sets: make(map[Category]Set, len(Categories))}
	for _, cat := range Categories {
		d.sets[cat] = make(Set)
	}

	for _, c := range doc.Classes {
		d.add(Classes, normalize(c), strings.TrimSpace(c))
	}

	for _, e := range doc.Enumerations {
		d.add(Classes, normalize(e.Name), strings.TrimSpace(e.Name))
		for _, lit := range e.Literals {
			d.addAttribute(Attribute{Class: e.Name, Name: lit})
		}
	}

	for _, a := range doc.Attributes {
		d.addAttribute(a)
	}

	for _, m := range doc.Methods {
		key := joinKey(normalize(m.Class), CanonicalSignature(m.Signature))
		label := fmt.Sprintf("%s.%s", strings.TrimSpace(m.Class), strings.TrimSpace(m.Signature))
		d.add(Methods, key, label)
	}

	for _, r := range doc.Relationships {
		key, label := relationshipKey(r, opts)
		d.add(Relationships, key, label)
	}

	return d
}

func (d Description) addAttribute(a Attribute) {
	name := stripVisibility(a.Name)
	key := joinKey(normalize(a.Class), normalize(name), compact(a.Type))
	label := fmt.Sprintf("%s.%s", strings.TrimSpace(a.Class), strings.TrimSpace(name))
	if t := strings.TrimSpace(a.Type); t != "" {
		label += ": " + t
	}
	d.add(Attributes, key, label)
}

func (d Description) add(cat Category, key, label string) {
	set := d.sets[cat]
	if _, ok := set[key]; ok {
		return
	}
	set[key] = Element{Category: cat, Key: key, Label: label}
}

// Set returns the elements of cat. The returned Set must not be modified.
func (d Description) Set(cat Category) Set {
	return d.sets[cat]
}

// Len returns the number of distinct elements in cat.
func (d Description) Len(cat Category) int {
	return len(d.sets[cat])
}

func relationshipKey(r Relationship, opts Options) (string, string) {
	kind := normalize(r.Kind)
	src, tgt := normalize(r.Source), normalize(r.Target)
	srcLabel, tgtLabel := strings.TrimSpace(r.Source), strings.TrimSpace(r.Target)
	multSrc := NormalizeMultiplicity(r.MultiplicitySource)
	multTgt := NormalizeMultiplicity(r.MultiplicityTarget)

	// Direction only orders the endpoints. A bidirectional association keys
	// the same as a directed one that happens to run in sorted order.
	arrow := "->"
	if kind == KindAssociation && normalize(r.Direction) == DirectionBidirectional {
		arrow = "<->"
		if src > tgt {
			src, tgt = tgt, src
			srcLabel, tgtLabel = tgtLabel, srcLabel
			multSrc, multTgt = multTgt, multSrc
		}
	}

	key := joinKey(kind, src, tgt)
	label := fmt.Sprintf("%s %s %s (%s)", srcLabel, arrow, tgtLabel, kind)

	if opts.MatchMultiplicity {
		key = joinKey(key, multSrc, multTgt)
		label = fmt.Sprintf("%s [%s] %s %s [%s] (%s)", srcLabel, multSrc, arrow, tgtLabel, multTgt, kind)
	}

	return key, label
}

// keySep separates the parts of a composite key. normalize and compact
// strip it from names, so distinct tuples cannot produce the same key.
const keySep = "\x00"

func joinKey(parts ...string) string {
	return strings.Join(parts, keySep)
}

// NormalizeMultiplicity maps equivalent multiplicity spellings onto one form:
// empty and "1" become "1..1", "*" and "..*" become "0..*", "1.." becomes "1..*".
func NormalizeMultiplicity(m string) string {
	m = compact(m)
	switch m {
	case "", "1":
		return "1..1"
	case "*", "..*":
		return "0..*"
	case "1..":
		return "1..*"
	}
	return m
}

// CanonicalSignature reduces a UML operation signature to a comparable form
// "name(p1:t1,p2:t2):ret". A leading visibility marker is dropped, an absent
// return type is "void", and all whitespace and letter case are ignored.
func CanonicalSignature(sig string) string {
	s := stripVisibility(sig)

	ret := ""
	if strings.Count(s, "(") == strings.Count(s, ")") {
		colon := strings.LastIndex(s, ":")
		if colon > strings.LastIndex(s, ")") {
			ret = s[colon+1:]
			s = s[:colon]
		}
	}
	ret = compact(ret)
	if ret == "" {
		ret = "void"
	}

	name, params := s, ""
	if open := strings.Index(s, "("); open >= 0 {
		if closeIdx := strings.Index(s[open:], ")"); closeIdx >= 0 {
			name = s[:open]
			params = s[open+1 : open+closeIdx]
		}
	}

	var parts []string
	for p := range strings.SplitSeq(params, ",") {
		p = compact(p)
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}

	return fmt.Sprintf("%s(%s):%s", compact(name), strings.Join(parts, ","), ret)
}

func stripVisibility(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && strings.ContainsRune("+-#~", rune(s[0])) {
		s = strings.TrimSpace(s[1:])
	}
	return s
}

// normalize trims, collapses interior whitespace, and folds case.
func normalize(s string) string {
	s = strings.ReplaceAll(s, keySep, "")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// compact removes all whitespace and folds case.
func compact(s string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == 0 {
			return -1
		}
		return r
	}, s))
}
