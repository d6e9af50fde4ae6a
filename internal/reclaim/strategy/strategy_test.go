package strategy

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// TestFuncAdapter tests that Func forwards the pointer it was given.
func TestFuncAdapter(t *testing.T) {
	var (
		calls int
		seen  unsafe.Pointer
	)
	v := 42
	f := Func(func(p unsafe.Pointer) {
		calls++
		seen = p
	})

	f.Reclaim(unsafe.Pointer(&v))

	require.Equal(t, 1, calls)
	require.Equal(t, unsafe.Pointer(&v), seen)
}

// TestBuiltinDestructors tests the two built-in variants with and without
// a destructor attached.
func TestBuiltinDestructors(t *testing.T) {
	v := "payload"
	p := unsafe.Pointer(&v)

	tests := []struct {
		name      string
		reclaimer func(destructor func(unsafe.Pointer)) Reclaimer
	}{
		{
			name: "drop box",
			reclaimer: func(d func(unsafe.Pointer)) Reclaimer {
				return DropBox{Destructor: d}
			},
		},
		{
			name: "drop in place",
			reclaimer: func(d func(unsafe.Pointer)) Reclaimer {
				return DropInPlace{Destructor: d}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			r := tt.reclaimer(func(got unsafe.Pointer) {
				calls++
				require.Equal(t, p, got)
			})
			r.Reclaim(p)
			require.Equal(t, 1, calls)

			// Nil destructor must be a safe no-op.
			tt.reclaimer(nil).Reclaim(p)
		})
	}
}
