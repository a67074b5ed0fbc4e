package consignment

import "sort"

// FilterByPackage returns the consignments that declare a change type for
// the named package.
func FilterByPackage(consignments []*Consignment, name string) []*Consignment {
	var out []*Consignment
	for _, c := range consignments {
		if c.AffectsPackage(name) {
			out = append(out, c)
		}
	}
	return out
}

// PackageNames returns the sorted, de-duplicated union of package names
// declared across all consignments.
func PackageNames(consignments []*Consignment) []string {
	set := make(map[string]bool)
	for _, c := range consignments {
		for _, pkg := range c.PackageNames() {
			set[pkg] = true
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
