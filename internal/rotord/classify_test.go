package rotord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	families := []string{"ipstrc", "pdtrc", "ipmgr"}

	tests := []struct {
		name       string
		file       string
		wantKind   EventKind
		wantFamily FamilyID
	}{
		{"valid sentinel", "ipstrc.111.bak", KindSentinel, 0},
		{"valid sentinel second family", "pdtrc.999.bak", KindSentinel, 1},
		{"no .bak at all", "ipstrc.log.0", KindIgnore, 0},
		{"bak not terminal suffix", "ipstrc.111.bak.1", KindIgnore, 0},
		{"bak gz not terminal suffix", "ipstrc.111.bak.1.gz", KindIgnore, 0},
		{"no stamp between family and bak", "ipstrc.bak", KindIgnore, 0},
		{"unknown family", "xyz.999.bak", KindIgnore, 0},
		{"first match wins", "ipmgrpdtrc.1.bak", KindSentinel, 1},
		{"bak not terminal suffix despite trailing bak", "ipstrc.bak.bak", KindIgnore, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := classify(tt.file, families)
			assert.Equal(t, tt.wantKind, ev.Kind)
			if tt.wantKind == KindSentinel {
				assert.Equal(t, tt.wantFamily, ev.Family)
			}
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	families := []string{"a", "b", "c"}

	ev1 := classify("a.123.bak", families)
	ev2 := classify("a.123.bak", families)

	assert.Equal(t, ev1, ev2)
}
