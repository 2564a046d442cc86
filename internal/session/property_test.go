// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty_AdapterLastWriteWins validates that after any sequence of
// writes, removals, and preference flips, a read observes the last written
// value (or misses if the last operation on the key was a removal).
//
// Op encoding: 0=Remove, 1=SetRemember(false), 2=SetRemember(true),
// anything else is Set with a value derived from the op index.
func TestProperty_AdapterLastWriteWins(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("get returns last set value regardless of flag flips", prop.ForAll(
		func(ops []int) bool {
			a := NewAdapter(NewMemStore(), NewMemStore())

			expected := ""
			for i, op := range ops {
				switch op {
				case 0:
					a.Remove("session")
					expected = ""
				case 1:
					a.SetRemember(false)
				case 2:
					a.SetRemember(true)
				default:
					value := fmt.Sprintf("record-%d", i)
					a.Set("session", value)
					expected = value
				}
			}
			return a.Get("session") == expected
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.TestingRun(t)
}

// TestProperty_AdapterNoDuplication validates that a write never leaves the
// key resident in both stores at once.
func TestProperty_AdapterNoDuplication(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("set leaves the key in exactly one store", prop.ForAll(
		func(remember bool, value string) bool {
			durable := NewMemStore()
			ephemeral := NewMemStore()
			a := NewAdapter(durable, ephemeral)

			a.SetRemember(remember)
			a.Set("session", value)

			inDurable, _ := durable.Get("session")
			inEphemeral, _ := ephemeral.Get("session")
			if remember {
				return inDurable == value && inEphemeral == ""
			}
			return inEphemeral == value && inDurable == ""
		},
		gen.Bool(),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
	))

	properties.Property("remove clears both stores", prop.ForAll(
		func(remember bool, value string) bool {
			durable := NewMemStore()
			ephemeral := NewMemStore()
			a := NewAdapter(durable, ephemeral)

			// Seed both stores directly to simulate the worst case of a
			// crash between Set's two sub-operations.
			_ = durable.Set("session", value)
			_ = ephemeral.Set("session", value)
			a.SetRemember(remember)

			a.Remove("session")

			inDurable, _ := durable.Get("session")
			inEphemeral, _ := ephemeral.Get("session")
			return inDurable == "" && inEphemeral == ""
		},
		gen.Bool(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
