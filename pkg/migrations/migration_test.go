package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPending(t *testing.T) {
	all := []RegisteredMigration{{Version: "001_a"}, {Version: "002_b"}, {Version: "003_c"}}

	got := pending(all, map[string]bool{"002_b": true})

	assert.Equal(t, []RegisteredMigration{{Version: "001_a"}, {Version: "003_c"}}, got)
	assert.Empty(t, pending(all, map[string]bool{"001_a": true, "002_b": true, "003_c": true}))
}

func TestChecksum(t *testing.T) {
	a := RegisteredMigration{Version: "001_a", Description: "create indexes"}
	b := RegisteredMigration{Version: "001_a", Description: "create more indexes"}

	assert.Len(t, Checksum(a), 64)
	assert.Equal(t, Checksum(a), Checksum(a))
	assert.NotEqual(t, Checksum(a), Checksum(b))
}
