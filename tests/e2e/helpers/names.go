package helpers

import (
	"github.com/google/uuid"
)

// UniqueName makes a name unlikely to collide with rows other runs left on a
// shared target. Against the local simulator the name is returned unchanged.
func (e *Env) UniqueName(base string) string {
	if e.Sim != nil {
		return base
	}
	return base + letterSuffix(6)
}

// letterSuffix returns n lowercase letters; names on the target accept letters only.
func letterSuffix(n int) string {
	id := uuid.New()
	out := make([]byte, n)
	for i := range out {
		out[i] = 'a' + id[i%len(id)]%26
	}
	return string(out)
}
