package rotord

import "strings"

// classify implements the Path Classifier: it decides whether a bare
// filename is a valid rollover sentinel and, if so, which configured
// family it belongs to.
//
// Rules, applied in order (spec.md §4.1):
//  1. no ".bak" in the name -> Ignore.
//  2. ".bak." appears anywhere in the name (e.g. "a.bak.1", "a.bak.1.gz",
//     "a.bak.bak") -> Ignore: ".bak" is not the terminal suffix.
//  3. name is exactly "<family>.bak" with no stamp -> Ignore.
//  4. name contains a configured family token as a substring -> Sentinel,
//     first match wins.
func classify(name string, families []string) Event {
	if !strings.Contains(name, ".bak") {
		return Event{Kind: KindIgnore, FileName: name}
	}

	if strings.Contains(name, ".bak.") {
		return Event{Kind: KindIgnore, FileName: name}
	}

	for i, family := range families {
		if name == family+".bak" {
			return Event{Kind: KindIgnore, FileName: name}
		}
		if strings.Contains(name, family) {
			return Event{Kind: KindSentinel, Family: FamilyID(i), FileName: name}
		}
	}

	return Event{Kind: KindIgnore, FileName: name}
}
