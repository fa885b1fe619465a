package model

import "fmt"

// Scope addresses either the whole performance or one part.
type Scope int

const Global Scope = -1

func Part(n int) Scope {
	return Scope(n)
}

func (s Scope) IsGlobal() bool {
	return s == Global
}

func (s Scope) PartNumber() int {
	return int(s)
}

func (s Scope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	return fmt.Sprintf("part %d", int(s))
}
