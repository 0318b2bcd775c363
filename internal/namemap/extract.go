package namemap

import (
	"encoding/xml"

	"github.com/indralab/protmapper/internal/uniprot"
	"golang.org/x/text/cases"
)

var (
	recommendedTag = cases.Fold().String("recommendedName")
	alternativeTag = cases.Fold().String("alternativeName")
)

// ExtractNames lists every name held by an entry's name section. Only the
// direct children of section are inspected; those tagged recommendedName or
// alternativeName (compared case-insensitively) contribute their fullName
// values followed by their shortName values. A nil section yields nothing.
func ExtractNames(section *uniprot.Node, id string, opts Options) []Mapping {
	if section == nil {
		return nil
	}
	opts = opts.withDefaults()
	fold := cases.Fold()
	fullName := opts.name("fullName")
	shortName := opts.name("shortName")

	var out []Mapping
	for i := range section.Children {
		block := &section.Children[i]
		if !isNameCategory(block.XMLName, opts.Namespace, fold) {
			continue
		}
		for _, n := range block.ChildrenNamed(fullName) {
			out = append(out, Mapping{Name: n.Text, ID: id, Organism: opts.Organism})
		}
		for _, n := range block.ChildrenNamed(shortName) {
			out = append(out, Mapping{Name: n.Text, ID: id, Organism: opts.Organism})
		}
	}
	return out
}

func isNameCategory(name xml.Name, namespace string, fold cases.Caser) bool {
	if name.Space != namespace {
		return false
	}
	tag := fold.String(name.Local)
	return tag == recommendedTag || tag == alternativeTag
}
